package analysis

import "fmt"

// ActivityStats breaks message volume down by hour, weekday and month.
type ActivityStats struct {
	Hourly       []HourCount            `json:"hourly"`
	Weekday      []Pair                 `json:"weekday"`
	Monthly      []Pair                 `json:"monthly"`
	AuthorHourly map[string][]HourCount `json:"author_hourly"`
}

// ActivityStats computes per-hour (all 24 slots), per-weekday (Monday-first,
// localized names), per-month ("YYYY-MM") message counts, and the per-author
// hourly breakdown.
func (a *Analyzer) ActivityStats() ActivityStats {
	var hourly [24]int
	var weekday [7]int
	monthly := newCounter()
	authorHourly := make(map[string]*[24]int)

	for _, m := range a.messages {
		hourly[m.Hour]++
		weekday[m.Weekday]++
		monthly.add(m.Timestamp.Format("2006-01"), 1)

		hours := authorHourly[m.Author]
		if hours == nil {
			hours = new([24]int)
			authorHourly[m.Author] = hours
		}
		hours[m.Hour]++
	}

	hourlyList := make([]HourCount, 24)
	for h := range hourlyList {
		hourlyList[h] = HourCount{Hour: h, Count: hourly[h]}
	}
	weekdayList := make([]Pair, 7)
	for w := range weekdayList {
		weekdayList[w] = Pair{Key: weekdayNames[w], Count: weekday[w]}
	}

	perAuthor := make(map[string][]HourCount, len(authorHourly))
	for author, hours := range authorHourly {
		var list []HourCount
		for h, n := range hours {
			if n > 0 {
				list = append(list, HourCount{Hour: h, Count: n})
			}
		}
		perAuthor[author] = list
	}

	return ActivityStats{
		Hourly:       hourlyList,
		Weekday:      weekdayList,
		Monthly:      monthly.sortedByKey(),
		AuthorHourly: perAuthor,
	}
}

// HeatmapHour is one hour cell of a heatmap row.
type HeatmapHour struct {
	Hour  int `json:"hour"`
	Count int `json:"count"`
}

// HeatmapRow is one weekday row of the activity heatmap.
type HeatmapRow struct {
	Weekday     int           `json:"weekday"`
	WeekdayName string        `json:"weekday_name"`
	Hours       []HeatmapHour `json:"hours"`
}

// ActivePeriod is a (weekday, hour) cell tied for the global activity maximum.
type ActivePeriod struct {
	Weekday string `json:"weekday"`
	Hour    int    `json:"hour"`
	Count   int    `json:"count"`
}

// HeatmapStats is the 7x24 weekday-by-hour activity matrix plus per-date
// totals and the busiest cells.
type HeatmapStats struct {
	Heatmap           []HeatmapRow   `json:"heatmap"`
	DateActivity      map[string]int `json:"date_activity"`
	MaxActivity       int            `json:"max_activity"`
	MostActivePeriods []ActivePeriod `json:"most_active_periods"`
}

// ActivityHeatmap computes the weekday-by-hour message count matrix, per-date
// totals, and the list of cells tied for the global maximum (zero-count cells
// excluded, at most 10 reported).
func (a *Analyzer) ActivityHeatmap() HeatmapStats {
	var grid [7][24]int
	dateActivity := make(map[string]int)

	for _, m := range a.messages {
		grid[m.Weekday][m.Hour]++
		dateActivity[m.Date]++
	}

	rows := make([]HeatmapRow, 7)
	for w := range rows {
		hours := make([]HeatmapHour, 24)
		for h := range hours {
			hours[h] = HeatmapHour{Hour: h, Count: grid[w][h]}
		}
		rows[w] = HeatmapRow{Weekday: w, WeekdayName: weekdayNames[w], Hours: hours}
	}

	maxActivity := 0
	var peaks []ActivePeriod
	for w := 0; w < 7; w++ {
		for h := 0; h < 24; h++ {
			count := grid[w][h]
			switch {
			case count > maxActivity:
				maxActivity = count
				peaks = []ActivePeriod{{Weekday: weekdayNames[w], Hour: h, Count: count}}
			case count == maxActivity && count > 0:
				peaks = append(peaks, ActivePeriod{Weekday: weekdayNames[w], Hour: h, Count: count})
			}
		}
	}
	if len(peaks) > 10 {
		peaks = peaks[:10]
	}

	return HeatmapStats{
		Heatmap:           rows,
		DateActivity:      dateActivity,
		MaxActivity:       maxActivity,
		MostActivePeriods: peaks,
	}
}

// PeriodPeak names the calendar period holding an activity extreme.
type PeriodPeak struct {
	Period   string `json:"period"`
	Messages int    `json:"messages"`
}

// SeasonalityPeaks collects the extremes of the weekly and monthly series.
type SeasonalityPeaks struct {
	MaxWeek  PeriodPeak `json:"max_week"`
	MinWeek  PeriodPeak `json:"min_week"`
	MaxMonth PeriodPeak `json:"max_month"`
	MinMonth PeriodPeak `json:"min_month"`
}

// SeasonalityStats tracks activity per ISO week and per month, with extremes.
type SeasonalityStats struct {
	WeeklyActivity  []Pair           `json:"weekly_activity"`
	MonthlyActivity []Pair           `json:"monthly_activity"`
	Peaks           SeasonalityPeaks `json:"peaks"`
}

// SeasonalityAnalysis counts messages per ISO week ("YYYY-Wnn") and per month
// ("YYYY-MM") and identifies the single busiest and quietest week and month.
func (a *Analyzer) SeasonalityAnalysis() SeasonalityStats {
	if len(a.messages) == 0 {
		return SeasonalityStats{}
	}

	weekly := newCounter()
	monthly := newCounter()
	for _, m := range a.messages {
		_, week := m.Timestamp.ISOWeek()
		weekly.add(fmt.Sprintf("%d-W%02d", m.Timestamp.Year(), week), 1)
		monthly.add(m.Timestamp.Format("2006-01"), 1)
	}

	var peaks SeasonalityPeaks
	if p, ok := weekly.peak(true); ok {
		peaks.MaxWeek = PeriodPeak{Period: p.Key, Messages: p.Count}
	}
	if p, ok := weekly.peak(false); ok {
		peaks.MinWeek = PeriodPeak{Period: p.Key, Messages: p.Count}
	}
	if p, ok := monthly.peak(true); ok {
		peaks.MaxMonth = PeriodPeak{Period: p.Key, Messages: p.Count}
	}
	if p, ok := monthly.peak(false); ok {
		peaks.MinMonth = PeriodPeak{Period: p.Key, Messages: p.Count}
	}

	return SeasonalityStats{
		WeeklyActivity:  weekly.sortedByKey(),
		MonthlyActivity: monthly.sortedByKey(),
		Peaks:           peaks,
	}
}
