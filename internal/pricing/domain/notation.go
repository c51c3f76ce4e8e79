package domain

// 推导记号表。所有 LaTeX 符号与公式集中在此定义,
// 公式中的记号必须与代入值键逐字一致, 否则替换不会命中。

// 代入值键
const (
	KeySpot       = "S_0"
	KeyStrike     = "K"
	KeyMaturity   = `\tau`
	KeyVolatility = `\sigma`
	KeyRate       = "r"
	KeyDividend   = "q"
	KeyD1         = "d_1"
	KeyD2         = "d_2"
	KeyCdfD1      = "N(d_1)"
	KeyCdfD2      = "N(d_2)"
	KeyCdfNegD1   = "N(-d_1)"
	KeyCdfNegD2   = "N(-d_2)"
	KeyPdfD1      = "N'(d_1)"
)

// 推导首项符号
const (
	SymbolPriceCall = "C"
	SymbolPricePut  = "P"
	SymbolDelta     = `\Delta`
	SymbolGamma     = `\Gamma`
	SymbolVega      = `\nu`
	SymbolTheta     = `\Theta`
	SymbolRho       = `\rho`
)

// Black-Scholes-Merton 公式体
const (
	FormulaD1 = `\frac{\ln{\left(\frac{S_0}{K}\right)} + \left(r - q + \frac{\sigma^{2}}{2}\right)\tau}{\sigma\sqrt{\tau}}`
	FormulaD2 = `d_1 - \sigma\sqrt{\tau}`

	FormulaPriceCall = `S_0 e^{-q\tau} N(d_1) - K e^{-r\tau} N(d_2)`
	FormulaPricePut  = `K e^{-r\tau} N(-d_2) - S_0 e^{-q\tau} N(-d_1)`

	FormulaDeltaCall = `e^{-q\tau} N(d_1)`
	FormulaDeltaPut  = `-e^{-q\tau} N(-d_1)`

	FormulaGamma = `\frac{e^{-q\tau} N'(d_1)}{S_0 \sigma \sqrt{\tau}}`
	FormulaVega  = `S_0 e^{-q\tau} N'(d_1) \sqrt{\tau}`

	FormulaThetaCall = `-\frac{S_0 e^{-q\tau} N'(d_1) \sigma}{2\sqrt{\tau}} - r K e^{-r\tau} N(d_2) + q S_0 e^{-q\tau} N(d_1)`
	FormulaThetaPut  = `-\frac{S_0 e^{-q\tau} N'(d_1) \sigma}{2\sqrt{\tau}} + r K e^{-r\tau} N(-d_2) - q S_0 e^{-q\tau} N(-d_1)`

	FormulaRhoCall = `K \tau e^{-r\tau} N(d_2)`
	FormulaRhoPut  = `-K \tau e^{-r\tau} N(-d_2)`
)
