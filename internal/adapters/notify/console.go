package notify

// console.go — salida por consola: tabla de trades, informe de rendimiento
// y notificación de trades en live. Los ratios indefinidos (NaN) se imprimen
// como "n/a", nunca como cero.

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/alejandrodnm/trendbot/internal/analytics"
	"github.com/alejandrodnm/trendbot/internal/domain"
)

// Console implementa ports.Notifier escribiendo al writer configurado.
type Console struct {
	out io.Writer
}

// NewConsole crea un notificador que escribe a stdout.
func NewConsole() *Console {
	return &Console{out: os.Stdout}
}

// NewConsoleWriter crea un notificador para tests.
func NewConsoleWriter(w io.Writer) *Console {
	return &Console{out: w}
}

// NotifyTrade imprime una línea por trade cerrado (modo live).
func (c *Console) NotifyTrade(_ context.Context, trade domain.TradeRecord) error {
	_, err := fmt.Fprintf(c.out, "[%s] %s %s qty:%d entry:%.2f exit:%.2f pnl:$%.2f (%.2f%%)\n",
		trade.ExitTime.Format("15:04:05"),
		trade.ID,
		trade.ExitReason,
		trade.Quantity,
		trade.EntryPrice,
		trade.ExitPrice,
		trade.PnL,
		trade.PnLPct,
	)
	return err
}

// PrintTrades imprime el ledger completo como tabla.
func (c *Console) PrintTrades(trades []domain.TradeRecord) {
	if len(trades) == 0 {
		fmt.Fprintln(c.out, "\n  No trades executed.")
		return
	}

	fmt.Fprintf(c.out, "\n=== TRADES (%d) ===\n", len(trades))

	table := tablewriter.NewWriter(c.out)
	table.Header("ID", "Entry", "Entry$", "Exit", "Exit$", "Qty", "Reason", "PnL", "PnL%")

	for _, tr := range trades {
		table.Append(
			tr.ID,
			tr.EntryTime.Format("01-02 15:04"),
			fmt.Sprintf("%.2f", tr.EntryPrice),
			tr.ExitTime.Format("01-02 15:04"),
			fmt.Sprintf("%.2f", tr.ExitPrice),
			fmt.Sprintf("%d", tr.Quantity),
			string(tr.ExitReason),
			fmt.Sprintf("$%.2f", tr.PnL),
			fmt.Sprintf("%.2f%%", tr.PnLPct),
		)
	}
	table.Render()
}

// PrintReport imprime el informe de rendimiento del backtest.
func (c *Console) PrintReport(report analytics.Report, initialCapital, finalEquity float64, period time.Duration) {
	fmt.Fprintf(c.out, "\n=== PERFORMANCE ===\n")
	fmt.Fprintf(c.out, "  Period:          %.0f days\n", period.Hours()/24)
	fmt.Fprintf(c.out, "  Initial capital: $%.2f\n", initialCapital)
	fmt.Fprintf(c.out, "  Final equity:    $%.2f\n", finalEquity)
	fmt.Fprintf(c.out, "  Net PnL:         $%.2f (%.2f%%)\n",
		finalEquity-initialCapital, pctOf(finalEquity-initialCapital, initialCapital))

	fmt.Fprintf(c.out, "\n  Trades:          %d (%d wins / %d losses)\n",
		report.TotalTrades, report.Wins, report.Losses)
	fmt.Fprintf(c.out, "  Win rate:        %s\n", ratio(report.WinRate, "%.1f%%"))
	fmt.Fprintf(c.out, "  Profit factor:   %s\n", ratio(report.ProfitFactor, "%.2f"))
	fmt.Fprintf(c.out, "  Expectancy:      %s\n", ratio(report.Expectancy, "$%.2f"))

	fmt.Fprintf(c.out, "\n  Sharpe:          %s\n", ratio(report.Sharpe, "%.2f"))
	fmt.Fprintf(c.out, "  Sortino:         %s\n", ratio(report.Sortino, "%.2f"))
	fmt.Fprintf(c.out, "  Calmar:          %s\n", ratio(report.Calmar, "%.2f"))
	fmt.Fprintf(c.out, "  Annual return:   %s\n", ratio(report.AnnualReturnPct, "%.2f%%"))

	fmt.Fprintf(c.out, "\n  Max drawdown:    $%.2f (%.2f%%, %d bars)\n",
		report.MaxDrawdown, report.MaxDrawdownPct, report.DrawdownBars)
	fmt.Fprintln(c.out)
}

// ratio formatea un ratio que puede ser NaN (muestra indefinido como "n/a").
func ratio(v float64, format string) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return fmt.Sprintf(format, v)
}

func pctOf(part, whole float64) float64 {
	if whole == 0 {
		return 0
	}
	return part / whole * 100
}
