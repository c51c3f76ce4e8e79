package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// PrecisionMode 数值显示精度模式
type PrecisionMode string

const (
	PrecisionUnchanged          PrecisionMode = "UNCHANGED"           // 原样输出
	PrecisionDecimalPlaces      PrecisionMode = "DECIMAL_PLACES"      // 固定小数位
	PrecisionSignificantFigures PrecisionMode = "SIGNIFICANT_FIGURES" // 固定有效数字
)

// Delimiter 代入值的包裹定界符
type Delimiter string

const (
	DelimiterNone        Delimiter = "NONE"
	DelimiterParenthesis Delimiter = "PARENTHESIS" // \left( \right)
	DelimiterBracket     Delimiter = "BRACKET"     // \left[ \right]
	DelimiterBrace       Delimiter = "BRACE"       // \left\{ \right\}
)

// EquationValue 方程代入值
// 键标识公式中被替换的记号, 值为数值或文本二选一。构造后不可变,
// WithDelimiter 与 WithPrecision 均返回副本。
type EquationValue struct {
	key       string
	number    decimal.Decimal
	isNumber  bool
	text      string
	delimiter Delimiter
	digits    int
	mode      PrecisionMode
}

// EquationValueInput 代入值的构造输入。
// Number 与 Text 二选一; Delimiter 与 Mode 留空时取 NONE 与 UNCHANGED。
type EquationValueInput struct {
	Key       string
	Number    *float64
	Text      string
	Delimiter Delimiter
	Digits    int
	Mode      PrecisionMode
}

// NewEquationValue 构造代入值, 全部校验在构造期完成:
// 键不得空白, 数值与文本不得同时给出或同时缺失, 精度策略仅对数值生效。
func NewEquationValue(in EquationValueInput) (*EquationValue, error) {
	if strings.TrimSpace(in.Key) == "" {
		return nil, ErrBlankValueKey
	}

	hasNumber := in.Number != nil
	hasText := in.Text != ""

	switch {
	case hasNumber && hasText:
		return nil, ErrConflictingValueKinds
	case !hasNumber && !hasText:
		return nil, ErrNoValueKind
	}

	delimiter := in.Delimiter
	if delimiter == "" {
		delimiter = DelimiterNone
	}

	switch delimiter {
	case DelimiterNone, DelimiterParenthesis, DelimiterBracket, DelimiterBrace:
	default:
		return nil, ErrInvalidDelimiter
	}

	mode := in.Mode
	if mode == "" {
		mode = PrecisionUnchanged
	}

	if hasText {
		if in.Digits != 0 || mode != PrecisionUnchanged {
			return nil, ErrPrecisionOnText
		}

		return &EquationValue{
			key:       in.Key,
			text:      in.Text,
			delimiter: delimiter,
			mode:      PrecisionUnchanged,
		}, nil
	}

	if err := validatePrecision(in.Digits, mode); err != nil {
		return nil, err
	}

	return &EquationValue{
		key:       in.Key,
		number:    decimal.NewFromFloat(*in.Number),
		isNumber:  true,
		delimiter: delimiter,
		digits:    in.Digits,
		mode:      mode,
	}, nil
}

// NewNumberValue 构造数值代入值, 默认不包裹、不改写精度。
func NewNumberValue(key string, value float64) (*EquationValue, error) {
	return NewEquationValue(EquationValueInput{Key: key, Number: &value})
}

// NewTextValue 构造文本代入值, 原样写入公式。
func NewTextValue(key, text string) (*EquationValue, error) {
	return NewEquationValue(EquationValueInput{Key: key, Text: text})
}

// Key 返回被替换的记号。
func (v *EquationValue) Key() string {
	return v.key
}

// IsNumber 判断值是否为数值。
func (v *EquationValue) IsNumber() bool {
	return v.isNumber
}

// WithDelimiter 返回改用指定定界符的副本。
func (v *EquationValue) WithDelimiter(delimiter Delimiter) (*EquationValue, error) {
	switch delimiter {
	case DelimiterNone, DelimiterParenthesis, DelimiterBracket, DelimiterBrace:
	default:
		return nil, ErrInvalidDelimiter
	}

	clone := *v
	clone.delimiter = delimiter

	return &clone, nil
}

// WithPrecision 返回改用指定精度策略的副本。
// 精度只对数值有意义, 文本值拒绝该操作。
func (v *EquationValue) WithPrecision(digits int, mode PrecisionMode) (*EquationValue, error) {
	if !v.isNumber {
		return nil, ErrPrecisionOnText
	}

	if err := validatePrecision(digits, mode); err != nil {
		return nil, err
	}

	clone := *v
	clone.digits = digits
	clone.mode = mode

	return &clone, nil
}

// validatePrecision 校验精度策略。
// 固定小数位允许 0 位 (取整); 有效数字至少为 1 位。
func validatePrecision(digits int, mode PrecisionMode) error {
	if digits < 0 {
		return ErrInvalidPrecisionDigits
	}

	switch mode {
	case PrecisionUnchanged, PrecisionDecimalPlaces:
	case PrecisionSignificantFigures:
		if digits == 0 {
			return ErrInvalidPrecisionDigits
		}
	default:
		return ErrInvalidPrecisionMode
	}

	return nil
}

// FormattedValue 返回按精度策略渲染后的值, 不含定界符。
// 输出始终为普通十进制记法, 不使用科学计数法。
func (v *EquationValue) FormattedValue() string {
	if !v.isNumber {
		return v.text
	}

	return formatNumber(v.number, v.digits, v.mode)
}

// formatNumber 按精度策略渲染数值。
// 两种舍入模式都采用四舍五入远离零, 对正负数对称。
func formatNumber(d decimal.Decimal, digits int, mode PrecisionMode) string {
	switch mode {
	case PrecisionDecimalPlaces:
		return d.StringFixed(int32(digits))
	case PrecisionSignificantFigures:
		return roundSignificant(d, digits).String()
	default:
		return d.String()
	}
}

// roundSignificant 保留 digits 位有效数字。
// 十进制指数由系数位数与 exponent 推出, 舍入位允许落在整数部分。
func roundSignificant(d decimal.Decimal, digits int) decimal.Decimal {
	if d.IsZero() || digits <= 0 {
		return d
	}

	magnitude := d.NumDigits() + int(d.Exponent()) - 1
	places := digits - 1 - magnitude

	return d.Round(int32(places))
}
