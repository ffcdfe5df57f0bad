package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/soaringjerry/NeuroReclaim/internal/config"
	"github.com/soaringjerry/NeuroReclaim/internal/recovery"
)

var (
	reportTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	reportLabelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Width(22)
	reportValueStyle = lipgloss.NewStyle().Bold(true)
	reportLevelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true)
)

type MetricsCmd struct {
	Substance   string    `help:"Substance type (nicotine, methamphetamine)." default:"nicotine"`
	Start       string    `help:"Abstinence start date (YYYY-MM-DD)." required:""`
	Consumption float64   `help:"Prior daily consumption in units." default:"1"`
	Price       float64   `help:"Price per unit." required:""`
	Currency    string    `help:"ISO currency code." default:"USD"`
	Unit        string    `help:"Consumption unit label." default:"unit"`
	Factor      *float64  `help:"Conversion factor from units to the avoided quantity."`
	Relapse     string    `help:"Date of the last streak-resetting relapse (YYYY-MM-DD)."`
	Now         time.Time `help:"Evaluate as of this instant (RFC3339). Defaults to the current time." format:"2006-01-02T15:04:05Z07:00"`
	Days        []int     `help:"Projection horizons in days." default:"7,30,90,365"`
}

// metricsReport is everything the metrics command prints.
type metricsReport struct {
	Profile     recovery.Profile
	Savings     recovery.SavingsMetrics
	Daily       float64
	Projection  recovery.Projection
	StreakDays  int
	Level       recovery.DopamineLevel
	Next        *recovery.DopamineLevel
	GeneratedAt time.Time
}

func (c *MetricsCmd) Run(_ *config.Config) error {
	now := c.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}
	r, err := c.build(now)
	if err != nil {
		return err
	}
	renderReport(os.Stdout, r)
	return nil
}

func (c *MetricsCmd) build(now time.Time) (metricsReport, error) {
	st, err := recovery.ParseSubstanceType(c.Substance)
	if err != nil {
		return metricsReport{}, err
	}
	p := recovery.Profile{
		SubstanceType:         st,
		Unit:                  c.Unit,
		UnitPrice:             c.Price,
		Currency:              strings.ToUpper(strings.TrimSpace(c.Currency)),
		AbstinenceStartDate:   strings.TrimSpace(c.Start),
		PriorDailyConsumption: c.Consumption,
	}
	var opts []recovery.SavingsOption
	if c.Factor != nil {
		opts = append(opts, recovery.WithConversionFactor(*c.Factor))
	}
	savings, err := recovery.ComputeSavingsMetrics(p, now, opts...)
	if err != nil {
		return metricsReport{}, err
	}
	daily := p.PriorDailyConsumption * p.UnitPrice
	proj, err := recovery.ProjectSavings(daily, c.Days)
	if err != nil {
		return metricsReport{}, err
	}

	start, _ := recovery.ParseDate("start", p.AbstinenceStartDate)
	var last *time.Time
	if c.Relapse != "" {
		t, err := recovery.ParseDate("relapse", c.Relapse)
		if err != nil {
			return metricsReport{}, err
		}
		last = &t
	}
	streak := recovery.ComputeStreak(start, last, now)
	r := metricsReport{
		Profile:     p,
		Savings:     savings,
		Daily:       recovery.Round2(daily),
		Projection:  proj,
		StreakDays:  streak,
		Level:       recovery.ComputeDopamineLevel(savings.DaysSinceReference),
		GeneratedAt: now,
	}
	if next, ok := recovery.NextDopamineLevel(savings.DaysSinceReference); ok {
		r.Next = &next
	}
	return r, nil
}

func renderReport(w io.Writer, r metricsReport) {
	row := func(label, value string) string {
		return lipgloss.JoinHorizontal(lipgloss.Top, reportLabelStyle.Render(label), reportValueStyle.Render(value))
	}
	money := func(v float64) string { return fmt.Sprintf("%.2f %s", v, r.Savings.Currency) }

	lines := []string{
		reportTitleStyle.Render(fmt.Sprintf("NeuroReclaim · %s", r.Profile.SubstanceType)),
		row("As of", r.GeneratedAt.Format(time.RFC3339)),
		row("Days abstinent", fmt.Sprintf("%d", r.Savings.DaysSinceReference)),
		row("Money saved", money(r.Savings.MoneySaved)),
		row("Quantity avoided", fmt.Sprintf("%.2f", r.Savings.QuantityAvoided)),
		row("Years recovered", fmt.Sprintf("%.2f", r.Savings.TimeRecovered)),
		row("Daily savings", money(r.Daily)),
		row("Current streak", fmt.Sprintf("%d days", r.StreakDays)),
		row("Dopamine level", reportLevelStyle.Render(fmt.Sprintf("%s (%d%%)", r.Level.Name, r.Level.ProgressPercent))),
	}
	if r.Next != nil {
		lines = append(lines, row("Next level", fmt.Sprintf("%s at day %d", r.Next.Name, r.Next.MinDays)))
	}
	if r.Projection.Len() > 0 {
		lines = append(lines, "", reportTitleStyle.Render("Projected savings"))
		for _, pt := range r.Projection.Points() {
			lines = append(lines, row(fmt.Sprintf("%d days", pt.Days), money(pt.Amount)))
		}
	}
	fmt.Fprintln(w, lipgloss.JoinVertical(lipgloss.Left, lines...))
}
