package analysis

import "sort"

// GhostingEvent records a silence of more than 24 hours between one author's
// message and the next message from someone else.
type GhostingEvent struct {
	GhostedBy   string  `json:"ghosted_by"`
	GhostedFrom string  `json:"ghosted_from"`
	RespondedBy string  `json:"responded_by"`
	RespondedAt string  `json:"responded_at"`
	HoursSilent float64 `json:"hours_silent"`
	DaysSilent  float64 `json:"days_silent"`
}

// AuthorGhosting summarizes how often and how long one author went silent.
type AuthorGhosting struct {
	GhostingCount  int     `json:"ghosting_count"`
	AvgHoursSilent float64 `json:"avg_hours_silent"`
	MaxHoursSilent float64 `json:"max_hours_silent"`
}

// GhostingStats reports long silences attributed to the author who caused
// them.
type GhostingStats struct {
	TotalGhostingEvents int                       `json:"total_ghosting_events"`
	TopGhostingEvents   []GhostingEvent           `json:"top_ghosting_events"`
	AuthorStats         map[string]AuthorGhosting `json:"author_stats"`
}

const ghostingThresholdHours = 24

// GhostingStats scans adjacent messages in file order and records an event
// whenever a message by a different author follows the previous one with a
// gap above 24 hours, attributed to the author who went silent. Events are
// sorted by silence length descending; the top 20 are returned alongside a
// per-author summary.
func (a *Analyzer) GhostingStats() GhostingStats {
	if len(a.messages) < 2 {
		return GhostingStats{TopGhostingEvents: []GhostingEvent{}}
	}

	var events []GhostingEvent
	for i := 1; i < len(a.messages); i++ {
		prev, cur := a.messages[i-1], a.messages[i]
		if prev.Author == cur.Author {
			continue
		}
		hours := cur.Timestamp.Sub(prev.Timestamp).Hours()
		if hours <= ghostingThresholdHours {
			continue
		}
		events = append(events, GhostingEvent{
			GhostedBy:   prev.Author,
			GhostedFrom: isoTimestamp(prev),
			RespondedBy: cur.Author,
			RespondedAt: isoTimestamp(cur),
			HoursSilent: round1(hours),
			DaysSilent:  round1(hours / 24),
		})
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].HoursSilent > events[j].HoursSilent
	})

	authorStats := make(map[string]AuthorGhosting)
	totals := make(map[string]float64)
	for _, e := range events {
		s := authorStats[e.GhostedBy]
		s.GhostingCount++
		totals[e.GhostedBy] += e.HoursSilent
		if e.HoursSilent > s.MaxHoursSilent {
			s.MaxHoursSilent = e.HoursSilent
		}
		authorStats[e.GhostedBy] = s
	}
	for author, s := range authorStats {
		s.AvgHoursSilent = round1(totals[author] / float64(s.GhostingCount))
		authorStats[author] = s
	}

	top := events
	if len(top) > 20 {
		top = top[:20]
	}
	if top == nil {
		top = []GhostingEvent{}
	}

	return GhostingStats{
		TotalGhostingEvents: len(events),
		TopGhostingEvents:   top,
		AuthorStats:         authorStats,
	}
}

// SeriesDistribution buckets series lengths.
type SeriesDistribution struct {
	From3To5   int `json:"3-5"`
	From6To10  int `json:"6-10"`
	From11To20 int `json:"11-20"`
	Over20     int `json:"20+"`
}

// AuthorSeries summarizes one author's message bursts.
type AuthorSeries struct {
	TotalSeries           int                `json:"total_series"`
	TotalMessagesInSeries int                `json:"total_messages_in_series"`
	AvgSeriesLength       float64            `json:"avg_series_length"`
	MaxSeriesLength       int                `json:"max_series_length"`
	SeriesDistribution    SeriesDistribution `json:"series_distribution"`
}

// SeriesStats reports burst runs per author.
type SeriesStats struct {
	AuthorSeries map[string]AuthorSeries `json:"author_series"`
}

const (
	seriesGapSeconds = 300
	seriesMinLength  = 3
)

// MessageSeriesStats detects bursts: runs of consecutive messages (in file
// order) by one author, each within 300 seconds of the previous message. Runs
// of three or more count as a series.
func (a *Analyzer) MessageSeriesStats() SeriesStats {
	if len(a.messages) < 2 {
		return SeriesStats{}
	}

	lengths := make(map[string][]int)
	currentAuthor := a.messages[0].Author
	currentLen := 1
	lastTime := a.messages[0].Timestamp

	record := func(author string, n int) {
		if n >= seriesMinLength {
			lengths[author] = append(lengths[author], n)
		}
	}

	for _, m := range a.messages[1:] {
		gap := m.Timestamp.Sub(lastTime).Seconds()
		if m.Author == currentAuthor && gap < seriesGapSeconds {
			currentLen++
		} else {
			record(currentAuthor, currentLen)
			currentAuthor = m.Author
			currentLen = 1
		}
		lastTime = m.Timestamp
	}
	record(currentAuthor, currentLen)

	result := make(map[string]AuthorSeries, len(lengths))
	for author, runs := range lengths {
		s := AuthorSeries{TotalSeries: len(runs)}
		sum := 0
		for _, n := range runs {
			sum += n
			if n > s.MaxSeriesLength {
				s.MaxSeriesLength = n
			}
			switch {
			case n <= 5:
				s.SeriesDistribution.From3To5++
			case n <= 10:
				s.SeriesDistribution.From6To10++
			case n <= 20:
				s.SeriesDistribution.From11To20++
			default:
				s.SeriesDistribution.Over20++
			}
		}
		s.TotalMessagesInSeries = sum
		s.AvgSeriesLength = round1(float64(sum) / float64(len(runs)))
		result[author] = s
	}

	if len(result) == 0 {
		return SeriesStats{}
	}
	return SeriesStats{AuthorSeries: result}
}

// ResponseDistribution buckets response latencies.
type ResponseDistribution struct {
	Under5Min  int `json:"under_5min"`
	Under1Hour int `json:"under_1hour"`
	Under1Day  int `json:"under_1day"`
	Over1Day   int `json:"over_1day"`
}

// AuthorResponse summarizes one author's reply latency.
type AuthorResponse struct {
	AvgMinutes     float64 `json:"avg_minutes"`
	MedianMinutes  float64 `json:"median_minutes"`
	TotalResponses int     `json:"total_responses"`
}

// ReactionStats reports reply latency per author plus conversation starters.
type ReactionStats struct {
	AvgResponseTimes     map[string]AuthorResponse       `json:"avg_response_times"`
	ResponseDistribution map[string]ResponseDistribution `json:"response_distribution"`
	ConversationStarters map[string]int                  `json:"conversation_starters"`
}

const starterGapHours = 6

// ReactionSpeedStats measures how fast each author replies. A message counts
// as a reply when its author differs from the previous message's author and
// has already appeared earlier in the chat. Separately it counts, per author,
// messages sent after more than six hours of silence from anyone
// ("conversation starters"); this threshold is independent of the 24-hour
// ghosting threshold, the two answer different questions.
func (a *Analyzer) ReactionSpeedStats() ReactionStats {
	if len(a.messages) < 2 {
		return ReactionStats{}
	}

	responseTimes := make(map[string][]float64)
	distribution := make(map[string]ResponseDistribution)
	starters := make(map[string]int)
	seenAuthors := make(map[string]struct{})

	lastAuthor := ""
	lastTime := a.messages[0].Timestamp

	for i, m := range a.messages {
		if i > 0 {
			gap := m.Timestamp.Sub(lastTime)
			minutes := gap.Minutes()
			hours := gap.Hours()

			if _, seen := seenAuthors[m.Author]; seen && m.Author != lastAuthor {
				responseTimes[m.Author] = append(responseTimes[m.Author], minutes)
				d := distribution[m.Author]
				switch {
				case minutes < 5:
					d.Under5Min++
				case hours < 1:
					d.Under1Hour++
				case hours < 24:
					d.Under1Day++
				default:
					d.Over1Day++
				}
				distribution[m.Author] = d
			}

			if hours > starterGapHours {
				starters[m.Author]++
			}
		}

		if lastAuthor != "" {
			seenAuthors[lastAuthor] = struct{}{}
		}
		lastTime = m.Timestamp
		lastAuthor = m.Author
	}

	avg := make(map[string]AuthorResponse, len(responseTimes))
	for author, times := range responseTimes {
		sum := 0.0
		for _, t := range times {
			sum += t
		}
		sorted := make([]float64, len(times))
		copy(sorted, times)
		sort.Float64s(sorted)
		avg[author] = AuthorResponse{
			AvgMinutes:     round1(sum / float64(len(times))),
			MedianMinutes:  round1(sorted[len(sorted)/2]),
			TotalResponses: len(times),
		}
	}

	return ReactionStats{
		AvgResponseTimes:     avg,
		ResponseDistribution: distribution,
		ConversationStarters: starters,
	}
}
