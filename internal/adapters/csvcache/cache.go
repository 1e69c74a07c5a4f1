package csvcache

// cache.go — caché CSV de barras históricas por símbolo y timeframe.
//
// Permite backtests offline: los datos descargados una vez se guardan como
// SYMBOL_TF.csv y los siguientes replays no necesitan proveedor externo.
// Save hace merge con el archivo existente deduplicando por timestamp.

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/alejandrodnm/trendbot/internal/domain"
)

var header = []string{"timestamp", "open", "high", "low", "close", "volume"}

// Cache es un almacén CSV de barras OHLCV. Implementa ports.BarProvider
// sobre datos históricos (modo replay).
type Cache struct {
	dir string
}

// New crea la caché en el directorio dado, creándolo si no existe.
func New(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("csvcache.New: mkdir %q: %w", dir, err)
	}
	return &Cache{dir: dir}, nil
}

// Save persiste barras, fusionándolas con las ya guardadas. Timestamps
// duplicados conservan la barra más reciente; el resultado queda ordenado.
func (c *Cache) Save(symbol string, tf domain.Timeframe, bars []domain.Bar) error {
	if len(bars) == 0 {
		return nil
	}

	existing, err := c.Load(symbol, tf)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("csvcache.Save: load existing: %w", err)
	}

	byTime := make(map[int64]domain.Bar, len(existing)+len(bars))
	for _, b := range existing {
		byTime[b.Timestamp.Unix()] = b
	}
	for _, b := range bars {
		byTime[b.Timestamp.Unix()] = b
	}

	merged := make([]domain.Bar, 0, len(byTime))
	for _, b := range byTime {
		merged = append(merged, b)
	}
	sort.Slice(merged, func(i, j int) bool {
		return merged[i].Timestamp.Before(merged[j].Timestamp)
	})

	f, err := os.Create(c.path(symbol, tf))
	if err != nil {
		return fmt.Errorf("csvcache.Save: create: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("csvcache.Save: write header: %w", err)
	}
	for _, b := range merged {
		record := []string{
			b.Timestamp.UTC().Format(time.RFC3339),
			formatFloat(b.Open),
			formatFloat(b.High),
			formatFloat(b.Low),
			formatFloat(b.Close),
			formatFloat(b.Volume),
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("csvcache.Save: write row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}

// Load lee todas las barras guardadas para el símbolo y timeframe.
// Devuelve os.ErrNotExist si nunca se guardó nada.
func (c *Cache) Load(symbol string, tf domain.Timeframe) ([]domain.Bar, error) {
	f, err := os.Open(c.path(symbol, tf))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("csvcache.Load: parse %s %s: %w", symbol, tf, err)
	}
	if len(rows) <= 1 {
		return nil, nil
	}

	bars := make([]domain.Bar, 0, len(rows)-1)
	for _, row := range rows[1:] { // skip header
		bar, err := parseRow(row)
		if err != nil {
			return nil, fmt.Errorf("csvcache.Load: %s %s: %w", symbol, tf, err)
		}
		bars = append(bars, bar)
	}
	return bars, nil
}

// FetchBars implementa ports.BarProvider sirviendo desde la caché las últimas
// `lookback` barras ya cerradas a la hora actual.
func (c *Cache) FetchBars(_ context.Context, symbol string, tf domain.Timeframe, lookback int) ([]domain.Bar, error) {
	bars, err := c.Load(symbol, tf)
	if err != nil {
		return nil, fmt.Errorf("csvcache.FetchBars: %w", err)
	}

	now := time.Now().UTC()
	closed := bars[:0:0]
	for _, b := range bars {
		if !b.CloseTime(tf).After(now) {
			closed = append(closed, b)
		}
	}

	if lookback > 0 && len(closed) > lookback {
		closed = closed[len(closed)-lookback:]
	}
	return closed, nil
}

func (c *Cache) path(symbol string, tf domain.Timeframe) string {
	return filepath.Join(c.dir, fmt.Sprintf("%s_%s.csv", symbol, tf))
}

func parseRow(row []string) (domain.Bar, error) {
	if len(row) != len(header) {
		return domain.Bar{}, fmt.Errorf("expected %d columns, got %d", len(header), len(row))
	}
	ts, err := time.Parse(time.RFC3339, row[0])
	if err != nil {
		return domain.Bar{}, fmt.Errorf("timestamp %q: %w", row[0], err)
	}

	vals := make([]float64, 5)
	for i, raw := range row[1:] {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return domain.Bar{}, fmt.Errorf("column %s: %w", header[i+1], err)
		}
		vals[i] = v
	}

	return domain.Bar{
		Timestamp: ts.UTC(),
		Open:      vals[0],
		High:      vals[1],
		Low:       vals[2],
		Close:     vals[3],
		Volume:    vals[4],
	}, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
