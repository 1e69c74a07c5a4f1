package domain

import "fmt"

// StrategyParameters son los parámetros de la estrategia EMA 1H + SuperTrend 10M.
// Inmutables durante una ejecución: cambiarlos invalida el estado de los
// indicadores y exige reconstruirlos (y estar FLAT).
type StrategyParameters struct {
	EMAPeriod          int     `yaml:"ema_period"`
	STATRPeriod        int     `yaml:"st_atr_period"`
	STMultiplier       float64 `yaml:"st_multiplier"`
	TPPct              float64 `yaml:"tp_pct"`
	SLPct              float64 `yaml:"sl_pct"`
	ContractMultiplier float64 `yaml:"contract_multiplier"` // $/punto por contrato (20 para NQ)
}

// DefaultParameters son los valores de producción para NQ.
func DefaultParameters() StrategyParameters {
	return StrategyParameters{
		EMAPeriod:          200,
		STATRPeriod:        10,
		STMultiplier:       3.0,
		TPPct:              1.2,
		SLPct:              0.4,
		ContractMultiplier: 20,
	}
}

// Validate rechaza parámetros malformados antes de procesar ninguna barra.
func (p StrategyParameters) Validate() error {
	if p.EMAPeriod <= 0 {
		return fmt.Errorf("strategy params: ema_period must be > 0, got %d", p.EMAPeriod)
	}
	if p.STATRPeriod <= 0 {
		return fmt.Errorf("strategy params: st_atr_period must be > 0, got %d", p.STATRPeriod)
	}
	if p.STMultiplier <= 0 {
		return fmt.Errorf("strategy params: st_multiplier must be > 0, got %g", p.STMultiplier)
	}
	if p.TPPct <= 0 {
		return fmt.Errorf("strategy params: tp_pct must be > 0, got %g", p.TPPct)
	}
	if p.SLPct <= 0 {
		return fmt.Errorf("strategy params: sl_pct must be > 0, got %g", p.SLPct)
	}
	if p.ContractMultiplier <= 0 {
		return fmt.Errorf("strategy params: contract_multiplier must be > 0, got %g", p.ContractMultiplier)
	}
	return nil
}

// TakeProfitPrice devuelve el precio de TP para una entrada larga.
func (p StrategyParameters) TakeProfitPrice(entry float64) float64 {
	return entry * (1 + p.TPPct/100)
}

// StopLossPrice devuelve el precio de SL para una entrada larga.
func (p StrategyParameters) StopLossPrice(entry float64) float64 {
	return entry * (1 - p.SLPct/100)
}

// RiskLimits es la configuración de límites de riesgo. Solo lectura;
// el RiskManager acumula PnL diario y drawdown contra ella.
type RiskLimits struct {
	MaxDailyLossPct float64 `yaml:"max_daily_loss_pct"` // % del balance inicial
	MaxDrawdownPct  float64 `yaml:"max_drawdown_pct"`   // % pico-a-valle
	RiskPerTradePct float64 `yaml:"risk_per_trade_pct"`
	MaxPositionPct  float64 `yaml:"max_position_pct"` // % del equity en nocional
	MinContracts    int     `yaml:"min_contracts"`
	MaxContracts    int     `yaml:"max_contracts"`
}

// DefaultRiskLimits replica los defaults del gestor de riesgo original.
func DefaultRiskLimits() RiskLimits {
	return RiskLimits{
		MaxDailyLossPct: 5.0,
		MaxDrawdownPct:  20.0,
		RiskPerTradePct: 1.0,
		MaxPositionPct:  10.0,
		MinContracts:    1,
		MaxContracts:    10,
	}
}

// Validate rechaza límites incoherentes en tiempo de configuración.
func (r RiskLimits) Validate() error {
	if r.MaxDailyLossPct <= 0 {
		return fmt.Errorf("risk limits: max_daily_loss_pct must be > 0, got %g", r.MaxDailyLossPct)
	}
	if r.MaxDrawdownPct <= 0 {
		return fmt.Errorf("risk limits: max_drawdown_pct must be > 0, got %g", r.MaxDrawdownPct)
	}
	if r.RiskPerTradePct <= 0 {
		return fmt.Errorf("risk limits: risk_per_trade_pct must be > 0, got %g", r.RiskPerTradePct)
	}
	if r.MaxPositionPct <= 0 {
		return fmt.Errorf("risk limits: max_position_pct must be > 0, got %g", r.MaxPositionPct)
	}
	if r.MinContracts < 1 {
		return fmt.Errorf("risk limits: min_contracts must be >= 1, got %d", r.MinContracts)
	}
	if r.MaxContracts < r.MinContracts {
		return fmt.Errorf("risk limits: max_contracts %d < min_contracts %d", r.MaxContracts, r.MinContracts)
	}
	return nil
}
