package domain

import "github.com/wyfcoding/pkg/xerrors"

// 定价域业务错误码使用 4002xx / 5002xx 区间。
var (
	// ErrInvalidContractInput 合约数值参数非法
	ErrInvalidContractInput = xerrors.New(xerrors.ErrInvalidArg, 400201, "invalid contract input", "spot, strike, maturity and volatility must be positive", nil)
	// ErrInvalidOptionType 期权类型非法
	ErrInvalidOptionType = xerrors.New(xerrors.ErrInvalidArg, 400202, "invalid option type", "supported option types: CALL, PUT", nil)
	// ErrInvalidOptionStyle 行权方式非法
	ErrInvalidOptionStyle = xerrors.New(xerrors.ErrInvalidArg, 400203, "invalid option style", "supported option styles: EUROPEAN, AMERICAN", nil)
	// ErrNoClosedForm 合约不满足解析定价前提
	ErrNoClosedForm = xerrors.New(xerrors.ErrInvalidArg, 400204, "no closed form solution", "analytic pricing requires a european option", nil)
	// ErrMissingContract 缺少合约
	ErrMissingContract = xerrors.New(xerrors.ErrInvalidArg, 400205, "missing contract", "an option contract is required", nil)
	// ErrInvalidDIndex d 参数下标越界
	ErrInvalidDIndex = xerrors.New(xerrors.ErrInvalidArg, 400206, "invalid d index", "the d parameter index must be 1 or 2", nil)
	// ErrInvalidTimeSteps 网格步数非法
	ErrInvalidTimeSteps = xerrors.New(xerrors.ErrInvalidArg, 400207, "invalid time steps", "the number of lattice time steps must be positive", nil)
	// ErrInvalidMarketPrice 市场价格非法
	ErrInvalidMarketPrice = xerrors.New(xerrors.ErrInvalidArg, 400208, "invalid market price", "the observed market price must be positive", nil)

	// ErrBlankEquation 方程为空白
	ErrBlankEquation = xerrors.New(xerrors.ErrInvalidArg, 400211, "blank equation", "the equation must not be blank", nil)
	// ErrNoEquationValues 代入值列表为空
	ErrNoEquationValues = xerrors.New(xerrors.ErrInvalidArg, 400212, "no equation values", "at least one equation value is required", nil)
	// ErrMissingEquationValue 代入值缺失
	ErrMissingEquationValue = xerrors.New(xerrors.ErrInvalidArg, 400213, "missing equation value", "equation values must not be nil", nil)
	// ErrNoFormulaParts 公式推导序列为空
	ErrNoFormulaParts = xerrors.New(xerrors.ErrInvalidArg, 400214, "no formula parts", "at least one formula part is required", nil)
	// ErrBlankValueKey 代入值键为空白
	ErrBlankValueKey = xerrors.New(xerrors.ErrInvalidArg, 400215, "blank value key", "the equation value key must not be blank", nil)
	// ErrConflictingValueKinds 数值与文本同时存在
	ErrConflictingValueKinds = xerrors.New(xerrors.ErrInvalidArg, 400216, "conflicting value kinds", "an equation value carries either a number or a text, not both", nil)
	// ErrNoValueKind 数值与文本均缺失
	ErrNoValueKind = xerrors.New(xerrors.ErrInvalidArg, 400217, "missing value kind", "an equation value requires either a number or a text", nil)
	// ErrPrecisionOnText 文本值不支持精度
	ErrPrecisionOnText = xerrors.New(xerrors.ErrInvalidArg, 400218, "precision on text value", "a rounding policy applies to numeric values only", nil)
	// ErrInvalidPrecisionDigits 精度位数非法
	ErrInvalidPrecisionDigits = xerrors.New(xerrors.ErrInvalidArg, 400219, "invalid precision digits", "the number of digits must not be negative", nil)
	// ErrInvalidPrecisionMode 精度模式非法
	ErrInvalidPrecisionMode = xerrors.New(xerrors.ErrInvalidArg, 400220, "invalid precision mode", "supported precision modes: UNCHANGED, DECIMAL_PLACES, SIGNIFICANT_FIGURES", nil)
	// ErrInvalidDelimiter 包裹定界符非法
	ErrInvalidDelimiter = xerrors.New(xerrors.ErrInvalidArg, 400221, "invalid delimiter", "supported delimiters: NONE, PARENTHESIS, BRACKET, BRACE", nil)

	// ErrVolatilityNotConverged 隐含波动率迭代未收敛
	ErrVolatilityNotConverged = xerrors.New(xerrors.ErrInternal, 500201, "implied volatility did not converge", "the newton-raphson iteration hit its cap without converging", nil)
)
