package recovery

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/shopspring/decimal"
)

// ProjectionPoint is the projected amount saved after Days days.
type ProjectionPoint struct {
	Days   int     `json:"days"`
	Amount float64 `json:"amount"`
}

// Projection maps a horizon in days to a projected amount, keeping the order horizons were
// requested in. It encodes as a JSON object keyed by horizon.
type Projection struct {
	points []ProjectionPoint
	index  map[int]int
}

func (p *Projection) set(days int, amount float64) {
	if p.index == nil {
		p.index = map[int]int{}
	}
	if i, ok := p.index[days]; ok {
		p.points[i].Amount = amount
		return
	}
	p.index[days] = len(p.points)
	p.points = append(p.points, ProjectionPoint{Days: days, Amount: amount})
}

// Amount returns the projected amount for a horizon.
func (p Projection) Amount(days int) (float64, bool) {
	i, ok := p.index[days]
	if !ok {
		return 0, false
	}
	return p.points[i].Amount, true
}

func (p Projection) Len() int { return len(p.points) }

// Points returns a copy of the entries in request order.
func (p Projection) Points() []ProjectionPoint {
	return append([]ProjectionPoint(nil), p.points...)
}

func (p Projection) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, pt := range p.points {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(strconv.Quote(strconv.Itoa(pt.Days)))
		buf.WriteByte(':')
		b, err := json.Marshal(pt.Amount)
		if err != nil {
			return nil, err
		}
		buf.Write(b)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// ProjectSavings projects dailySavings over each horizon, rounding to cents.
// A repeated horizon overwrites its earlier entry.
func ProjectSavings(dailySavings float64, horizons []int) (Projection, error) {
	if !finite(dailySavings) {
		return Projection{}, &ValidationError{Field: "daily_savings", Reason: "must be a finite number"}
	}
	daily := decimal.NewFromFloat(dailySavings)
	var out Projection
	for _, d := range horizons {
		out.set(d, daily.Mul(decimal.NewFromInt(int64(d))).Round(2).InexactFloat64())
	}
	return out, nil
}
