package domain

import (
	"regexp"
	"strings"

	"github.com/wyfcoding/pkg/xerrors"
)

// CalculationStep 单条推导: 符号形式、公式形式、代入形式与最终结果的有序序列。
type CalculationStep []string

// CalculationTrace 完整推导, 由多条推导步骤串联而成。
type CalculationTrace []CalculationStep

// wordKeyPattern 仅含 \w 字符的键走整词匹配, 其余键按字面量匹配。
var wordKeyPattern = regexp.MustCompile(`^\w+$`)

// Substitute 将代入值逐个替换进方程并返回替换结果。
// 每个键在方程中的所有出现都会被替换; 替换按值列表顺序依次执行,
// 先替换产生的文本会暴露给后续替换。
func Substitute(equation string, values []*EquationValue) (string, error) {
	if strings.TrimSpace(equation) == "" {
		return "", ErrBlankEquation
	}

	if len(values) == 0 {
		return "", ErrNoEquationValues
	}

	result := equation

	for _, value := range values {
		if value == nil {
			return "", ErrMissingEquationValue
		}

		pattern, err := tokenPattern(value.key)
		if err != nil {
			return "", err
		}

		replacement := wrapDelimiter(value.FormattedValue(), value.delimiter)
		result = pattern.ReplaceAllString(result, escapeReplacement(replacement))
	}

	return result, nil
}

// Solve 组装一条完整推导步骤: 公式推导序列、末项的代入形式, 以及可选的最终结果。
func Solve(formulaParts []string, values []*EquationValue, answer string) (CalculationStep, error) {
	if len(formulaParts) == 0 {
		return nil, ErrNoFormulaParts
	}

	substituted, err := Substitute(formulaParts[len(formulaParts)-1], values)
	if err != nil {
		return nil, err
	}

	step := make(CalculationStep, 0, len(formulaParts)+2)
	step = append(step, formulaParts...)
	step = append(step, substituted)

	if answer != "" {
		step = append(step, answer)
	}

	return step, nil
}

// tokenPattern 构造键的匹配模式。
// 整词键加 \b 边界, 避免命中更长记号的子串; 含 LaTeX 转义等
// 特殊字符的键退化为字面量匹配。
func tokenPattern(key string) (*regexp.Regexp, error) {
	expr := regexp.QuoteMeta(key)
	if wordKeyPattern.MatchString(key) {
		expr = `\b` + expr + `\b`
	}

	pattern, err := regexp.Compile(expr)
	if err != nil {
		return nil, xerrors.WrapInternal(err, "compile substitution pattern")
	}

	return pattern, nil
}

// wrapDelimiter 按定界符包裹替换文本。
func wrapDelimiter(s string, delimiter Delimiter) string {
	switch delimiter {
	case DelimiterParenthesis:
		return `\left(` + s + `\right)`
	case DelimiterBracket:
		return `\left[` + s + `\right]`
	case DelimiterBrace:
		return `\left\{` + s + `\right\}`
	default:
		return s
	}
}

// escapeReplacement 转义替换文本中的 $, 防止被解释为正则反向引用。
func escapeReplacement(s string) string {
	return strings.ReplaceAll(s, "$", "$$")
}
