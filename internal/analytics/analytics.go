package analytics

// analytics.go — métricas agregadas sobre un ledger cerrado.
//
// Los ratios con denominador cero devuelven NaN explícito, nunca un cero
// silencioso: "sin trades perdedores" y "profit factor 0" son cosas distintas
// y el caller debe poder distinguirlas.

import (
	"math"

	"github.com/alejandrodnm/trendbot/internal/domain"
)

// Report agrega estadísticas de riesgo/retorno de una ejecución completada.
type Report struct {
	TotalTrades int
	Wins        int
	Losses      int

	WinRate      float64 // %, NaN sin trades
	GrossProfit  float64
	GrossLoss    float64 // valor absoluto
	NetPnL       float64
	ProfitFactor float64 // NaN sin pérdidas
	Expectancy   float64 // PnL medio por trade, NaN sin trades

	Sharpe  float64 // NaN con menos de 2 retornos o desviación cero
	Sortino float64 // NaN sin retornos negativos
	Calmar  float64 // NaN sin drawdown o sin ventana temporal

	MaxDrawdown     float64 // en dólares
	MaxDrawdownPct  float64
	DrawdownBars    int // duración del peor drawdown, en puntos de equity
	AnnualReturnPct float64
}

// Analyze computa el informe a partir del ledger y la curva de equity.
// periodsPerYear es el factor de anualización del timeframe de la curva.
func Analyze(trades []domain.TradeRecord, equity []domain.EquityPoint, periodsPerYear float64) Report {
	r := Report{
		WinRate:      math.NaN(),
		ProfitFactor: math.NaN(),
		Expectancy:   math.NaN(),
		Sharpe:       math.NaN(),
		Sortino:      math.NaN(),
		Calmar:       math.NaN(),
	}

	r.TotalTrades = len(trades)
	for _, t := range trades {
		r.NetPnL += t.PnL
		if t.Win() {
			r.Wins++
			r.GrossProfit += t.PnL
		} else {
			r.Losses++
			r.GrossLoss += -t.PnL
		}
	}

	if r.TotalTrades > 0 {
		r.WinRate = float64(r.Wins) / float64(r.TotalTrades) * 100
		r.Expectancy = r.NetPnL / float64(r.TotalTrades)
	}
	if r.GrossLoss > 0 {
		r.ProfitFactor = r.GrossProfit / r.GrossLoss
	}

	r.MaxDrawdown, r.MaxDrawdownPct, r.DrawdownBars = maxDrawdown(equity)

	returns := pctReturns(equity)
	annualize := math.Sqrt(periodsPerYear)

	if mean, std, ok := meanStd(returns); ok && std > 0 {
		r.Sharpe = mean / std * annualize
	}
	if mean, ok := sortinoRatio(returns); ok {
		r.Sortino = mean * annualize
	}

	r.AnnualReturnPct = annualReturnPct(equity)
	if r.MaxDrawdownPct > 0 && !math.IsNaN(r.AnnualReturnPct) {
		r.Calmar = r.AnnualReturnPct / r.MaxDrawdownPct
	}

	return r
}

// pctReturns devuelve los retornos porcentuales punto a punto de la curva.
func pctReturns(equity []domain.EquityPoint) []float64 {
	if len(equity) < 2 {
		return nil
	}
	returns := make([]float64, 0, len(equity)-1)
	for i := 1; i < len(equity); i++ {
		prev := equity[i-1].Equity
		if prev == 0 {
			continue
		}
		returns = append(returns, (equity[i].Equity-prev)/prev)
	}
	return returns
}

// meanStd devuelve media y desviación muestral (n-1).
func meanStd(xs []float64) (mean, std float64, ok bool) {
	if len(xs) < 2 {
		return 0, 0, false
	}
	for _, x := range xs {
		mean += x
	}
	mean /= float64(len(xs))

	var ss float64
	for _, x := range xs {
		ss += (x - mean) * (x - mean)
	}
	std = math.Sqrt(ss / float64(len(xs)-1))
	return mean, std, true
}

// sortinoRatio devuelve mean(returns)/std(returns negativos), sin anualizar.
func sortinoRatio(returns []float64) (float64, bool) {
	mean, _, ok := meanStd(returns)
	if !ok {
		return 0, false
	}

	var downside []float64
	for _, r := range returns {
		if r < 0 {
			downside = append(downside, r)
		}
	}
	_, downStd, ok := meanStd(downside)
	if !ok || downStd == 0 {
		return 0, false
	}
	return mean / downStd, true
}

// maxDrawdown devuelve el peor retroceso pico-a-valle de la curva y su
// duración en puntos.
func maxDrawdown(equity []domain.EquityPoint) (dd, ddPct float64, bars int) {
	if len(equity) == 0 {
		return 0, 0, 0
	}

	peak := equity[0].Equity
	var current int
	for _, p := range equity {
		if p.Equity > peak {
			peak = p.Equity
			current = 0
			continue
		}
		current++
		d := peak - p.Equity
		if d > dd {
			dd = d
			if peak > 0 {
				ddPct = d / peak * 100
			}
		}
		if current > bars {
			bars = current
		}
	}
	return dd, ddPct, bars
}

// annualReturnPct anualiza el retorno total de la curva asumiendo 365 días.
func annualReturnPct(equity []domain.EquityPoint) float64 {
	if len(equity) < 2 || equity[0].Equity == 0 {
		return math.NaN()
	}
	span := equity[len(equity)-1].Time.Sub(equity[0].Time)
	if span <= 0 {
		return math.NaN()
	}
	total := (equity[len(equity)-1].Equity/equity[0].Equity - 1) * 100
	years := span.Hours() / 24 / 365
	return total / years
}
