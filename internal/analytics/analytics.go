// Package analytics holds the aggregate views shown on the admin dashboard
// and renders them as charts.
package analytics

import (
	"fmt"
	"io"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

type GeneralStats struct {
	TotalVenues  int     `json:"totalVenues"`
	TotalUsers   int     `json:"totalUsers"`
	TotalReviews int     `json:"totalReviews"`
	AvgRating    float64 `json:"avgRating"`
}

type PopularVenue struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Address      string  `json:"address"`
	PricePerHour float64 `json:"pricePerHour"`
	AvgRating    float64 `json:"avgRating"`
	ReviewCount  int     `json:"reviewCount"`
}

type RatingBucket struct {
	Score int `json:"rating"`
	Count int `json:"count"`
}

type MonthlyRatings struct {
	Month     string  `json:"month"` // YYYY-MM
	Count     int     `json:"count"`
	AvgRating float64 `json:"avgRating"`
}

type MonthlyCount struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}

type Activity struct {
	RatingID  int64  `json:"ratingId"`
	Username  string `json:"username"`
	VenueID   int64  `json:"venueId"`
	VenueName string `json:"venueName"`
	Score     int    `json:"rating"`
	Review    string `json:"review"`
	CreatedAt string `json:"createdAt"`
}

// Dashboard is everything the charts page needs.
type Dashboard struct {
	Stats         GeneralStats
	Popular       []PopularVenue
	Distribution  []RatingBucket
	PerMonth      []MonthlyRatings
	Registrations []MonthlyCount
}

// Render writes a self-contained HTML page with one chart per series.
func Render(w io.Writer, d Dashboard) error {
	page := components.NewPage()
	page.PageTitle = "Futsal Analytics"
	page.AddCharts(
		distributionChart(d),
		perMonthChart(d.PerMonth),
		popularChart(d.Popular),
		registrationsChart(d.Registrations),
	)
	if err := page.Render(w); err != nil {
		return fmt.Errorf("rendering analytics page: %w", err)
	}
	return nil
}

func distributionChart(d Dashboard) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Rating distribution",
			Subtitle: fmt.Sprintf("%d reviews, mean %.1f", d.Stats.TotalReviews, d.Stats.AvgRating),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)

	x := make([]string, len(d.Distribution))
	y := make([]opts.BarData, len(d.Distribution))
	for i, b := range d.Distribution {
		x[i] = strconv.Itoa(b.Score) + "★"
		y[i] = opts.BarData{Value: b.Count}
	}
	bar.SetXAxis(x).AddSeries("Reviews", y)
	return bar
}

func perMonthChart(months []MonthlyRatings) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Reviews per month"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)

	x := make([]string, len(months))
	counts := make([]opts.LineData, len(months))
	avgs := make([]opts.LineData, len(months))
	for i, m := range months {
		x[i] = m.Month
		counts[i] = opts.LineData{Value: m.Count}
		avgs[i] = opts.LineData{Value: m.AvgRating}
	}
	line.SetXAxis(x).
		AddSeries("Reviews", counts).
		AddSeries("Mean rating", avgs)
	return line
}

func popularChart(venues []PopularVenue) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Top rated venues"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)

	x := make([]string, len(venues))
	y := make([]opts.BarData, len(venues))
	for i, v := range venues {
		x[i] = v.Name
		y[i] = opts.BarData{Value: v.AvgRating, Name: fmt.Sprintf("%d reviews", v.ReviewCount)}
	}
	bar.SetXAxis(x).AddSeries("Mean rating", y)
	return bar
}

func registrationsChart(months []MonthlyCount) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(charts.WithTitleOpts(opts.Title{Title: "New accounts per month"}))

	x := make([]string, len(months))
	y := make([]opts.LineData, len(months))
	for i, m := range months {
		x[i] = m.Month
		y[i] = opts.LineData{Value: m.Count}
	}
	line.SetXAxis(x).AddSeries("Accounts", y)
	return line
}
