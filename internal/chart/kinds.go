package chart

import (
	"fmt"
	"math"
	"time"

	"github.com/tictracker/internal/catalog"
	"github.com/tictracker/internal/service"
)

func rowDates(rows []service.DayRow) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Date
	}
	return out
}

func maxTotal(rows []service.DayRow) float64 {
	highest := 0
	for _, r := range rows {
		if r.Total > highest {
			highest = r.Total
		}
	}
	return float64(highest)
}

func renderStacked(data service.ChartData, opts Options) string {
	c := newCanvas(opts, defaultMargin)
	c.legend(data.Keys, data.Colors)
	top := c.yAxis(maxTotal(data.Rows), false, "#4B5563")
	c.xLabels(rowDates(data.Rows))

	band := c.innerWidth() / float64(len(data.Rows))
	barWidth := band * 0.7
	baseY := c.m.top + c.innerHeight()
	for i, row := range data.Rows {
		x := c.m.left + band*float64(i) + (band-barWidth)/2
		y := baseY
		for _, key := range data.Keys {
			v := row.Values[key]
			if v == 0 {
				continue
			}
			h := c.innerHeight() * float64(v) / top
			y -= h
			c.rect(x, y, barWidth, h, data.Colors[key], fmt.Sprintf("%s %s: %d", row.Date, key, v))
		}
	}
	return c.String()
}

func renderBar(data service.ChartData, opts Options) string {
	c := newCanvas(opts, defaultMargin)
	color := "#6B7280"
	if len(data.Categories) > 0 {
		color = catalog.HexColor(data.Categories[0])
	}
	top := c.yAxis(maxTotal(data.Rows), false, "#4B5563")
	c.xLabels(rowDates(data.Rows))

	band := c.innerWidth() / float64(len(data.Rows))
	barWidth := band * 0.7
	baseY := c.m.top + c.innerHeight()
	for i, row := range data.Rows {
		if row.Total == 0 {
			continue
		}
		h := c.innerHeight() * float64(row.Total) / top
		x := c.m.left + band*float64(i) + (band-barWidth)/2
		c.rect(x, baseY-h, barWidth, h, color, fmt.Sprintf("%s: %d", row.Date, row.Total))
	}
	return c.String()
}

func renderPie(data service.ChartData, opts Options) string {
	c := newCanvas(opts, margin{top: 40, right: 20, bottom: 20, left: 20})
	c.legend(data.Keys, data.Colors)

	total := 0
	for _, s := range data.Slices {
		total += s.Value
	}
	cx := float64(opts.Width) / 2
	cy := c.m.top + c.innerHeight()/2
	r := math.Min(c.innerWidth(), c.innerHeight()) / 2

	if len(data.Slices) == 1 {
		s := data.Slices[0]
		fmt.Fprintf(&c.b, `<circle cx="%.2f" cy="%.2f" r="%.2f" fill="%s"><title>%s: %d</title></circle>`, cx, cy, r, attr(data.Colors[s.Name]), attr(s.Name), s.Value)
		return c.String()
	}

	angle := -math.Pi / 2
	for _, s := range data.Slices {
		sweep := 2 * math.Pi * float64(s.Value) / float64(total)
		x1, y1 := cx+r*math.Cos(angle), cy+r*math.Sin(angle)
		angle += sweep
		x2, y2 := cx+r*math.Cos(angle), cy+r*math.Sin(angle)
		large := 0
		if sweep > math.Pi {
			large = 1
		}
		fmt.Fprintf(&c.b, `<path d="M%.2f,%.2f L%.2f,%.2f A%.2f,%.2f 0 %d 1 %.2f,%.2f Z" fill="%s" stroke="#fff"><title>%s: %d (%.0f%%)</title></path>`,
			cx, cy, x1, y1, r, r, large, x2, y2, attr(data.Colors[s.Name]), attr(s.Name), s.Value, 100*float64(s.Value)/float64(total))
	}
	return c.String()
}

func renderCombo(data service.ChartData, opts Options) string {
	c := newCanvas(opts, defaultMargin)
	color := "#6B7280"
	if len(data.Categories) > 0 {
		color = catalog.HexColor(data.Categories[0])
	}
	const tempColor = "#F97316"
	c.legend([]string{"次數", "氣溫 (°C)"}, map[string]string{"次數": color, "氣溫 (°C)": tempColor})

	maxCount := c.yAxis(maxTotal(data.Rows), false, color)
	maxTemp := 0.0
	for _, row := range data.Rows {
		if row.Temperature != nil && *row.Temperature > maxTemp {
			maxTemp = *row.Temperature
		}
	}
	maxTemp = c.yAxis(maxTemp, true, tempColor)
	c.xLabels(rowDates(data.Rows))

	band := c.innerWidth() / float64(len(data.Rows))
	barWidth := band * 0.6
	baseY := c.m.top + c.innerHeight()
	var points [][2]float64
	for i, row := range data.Rows {
		x := c.m.left + band*float64(i)
		if row.Total > 0 {
			h := c.innerHeight() * float64(row.Total) / maxCount
			c.rect(x+(band-barWidth)/2, baseY-h, barWidth, h, color, fmt.Sprintf("%s: %d", row.Date, row.Total))
		}
		if row.Temperature != nil {
			points = append(points, [2]float64{x + band/2, baseY - c.innerHeight()*(*row.Temperature)/maxTemp})
		}
	}
	c.polyline(points, tempColor)
	return c.String()
}

func renderGrowth(data service.ChartData, opts Options) string {
	c := newCanvas(opts, margin{top: 40, right: 50, bottom: 60, left: 50})
	c.legend(data.Keys, data.Colors)

	first := data.Points[0].Timestamp
	last := data.Points[len(data.Points)-1].Timestamp
	span := float64(last - first)
	if span <= 0 {
		span = 1
	}

	maxHeight, maxWeight := 0.0, 0.0
	for _, p := range data.Points {
		if p.Height != nil {
			maxHeight = math.Max(maxHeight, *p.Height)
		}
		if p.Weight != nil {
			maxWeight = math.Max(maxWeight, *p.Weight)
		}
	}
	heightKey, weightKey := "身高 (cm)", "體重 (kg)"
	maxHeight = c.yAxis(maxHeight, false, data.Colors[heightKey])
	maxWeight = c.yAxis(maxWeight, true, data.Colors[weightKey])

	baseY := c.m.top + c.innerHeight()
	c.line(c.m.left, baseY, c.m.left+c.innerWidth(), baseY, "#9CA3AF")
	xOf := func(ts int64) float64 {
		return c.m.left + c.innerWidth()*float64(ts-first)/span
	}
	for _, ts := range []int64{first, last} {
		label := time.UnixMilli(ts).Format("06/01/02")
		c.text(xOf(ts), baseY+18, "middle", "#4B5563", label, "")
	}

	var heights, weights [][2]float64
	for _, p := range data.Points {
		if p.Height != nil && *p.Height > 0 {
			heights = append(heights, [2]float64{xOf(p.Timestamp), baseY - c.innerHeight()*(*p.Height)/maxHeight})
		}
		if p.Weight != nil && *p.Weight > 0 {
			weights = append(weights, [2]float64{xOf(p.Timestamp), baseY - c.innerHeight()*(*p.Weight)/maxWeight})
		}
	}
	c.polyline(heights, data.Colors[heightKey])
	c.polyline(weights, data.Colors[weightKey])
	return c.String()
}
