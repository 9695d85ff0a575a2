// Package render formats bracket results as plain-text tables for terminals,
// MCP tool responses and the text endpoint.
package render

import (
	"bytes"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/sam-maryland/losers-bracket/internal/bracket"
	"github.com/sam-maryland/losers-bracket/internal/service"
)

const (
	LabelTop  = "King of the Losers"
	LabelLast = "DEAD LAST"
)

// Bracket writes the full bracket: status line, cohort, ranking and the
// escape message.
func Bracket(w io.Writer, r *bracket.Result) {
	s := r.Settings
	fmt.Fprintf(w, "%d Losers Bracket - league %s\n", r.Season, r.LeagueID)
	fmt.Fprintf(w, "Regular season: through Week %d - Bracket: Weeks %s\n", s.Cutoff, s.Window)
	if status := LiveStatus(r); status != "" {
		fmt.Fprintln(w, status)
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Bottom %d after Week %d\n", s.CohortSize, s.Cutoff)
	Cohort(w, r)
	fmt.Fprintln(w)

	if banner := TieBanner(r); banner != "" {
		fmt.Fprintln(w, banner)
	}
	fmt.Fprintf(w, "Losers Bracket Ranking (Weeks %s)\n", s.Window)
	Ranking(w, r)
	fmt.Fprintln(w)

	fmt.Fprintln(w, EscapeMessage(r))
}

// BracketText renders Bracket into a string.
func BracketText(r *bracket.Result) string {
	var buf bytes.Buffer
	Bracket(&buf, r)
	return buf.String()
}

// Cohort writes the cohort in regular-season order, best of the worst first.
func Cohort(w io.Writer, r *bracket.Result) {
	t := newTable(w)
	t.AppendHeader(table.Row{"#", "Team", "Owner", "Record", "PF"})
	for i, entry := range r.Cohort {
		t.AppendRow(table.Row{i + 1, r.Name(entry.TeamID), r.Teams[entry.TeamID].Owner, entry.Record(), fmt.Sprintf("%.2f", entry.PointsFor)})
	}
	t.Render()
}

// Ranking writes the final ranking with the top and last place marked.
func Ranking(w io.Writer, r *bracket.Result) {
	t := newTable(w)
	t.AppendHeader(table.Row{"Pos", "Team", "Points", ""})
	for _, rt := range r.Ranking {
		t.AppendRow(table.Row{rt.Position, r.Name(rt.TeamID), fmt.Sprintf("%.2f", rt.Score), PositionLabel(rt)})
	}
	t.Render()
}

// PositionLabel names the two ends of the ranking.
func PositionLabel(rt bracket.RankedTeam) string {
	switch {
	case rt.LastPlace:
		return LabelLast
	case rt.TopOfLosers:
		return LabelTop
	}
	return ""
}

// LiveStatus describes live scoring for the current week, if any.
func LiveStatus(r *bracket.Result) string {
	switch {
	case r.LiveUnavailable:
		return fmt.Sprintf("Live scores for Week %d are unavailable - showing finalized weeks only", r.CurrentWeek)
	case r.LiveActive:
		return fmt.Sprintf("Live scoring active for Week %d", r.CurrentWeek)
	}
	return ""
}

// TieBanner announces the regular-season fallback when every tally is equal.
func TieBanner(r *bracket.Result) string {
	if !r.TiebreakUsed {
		return ""
	}
	return fmt.Sprintf("ALL %d TEAMS CURRENTLY TIED! Using Week %d standings as tiebreaker", len(r.Ranking), r.Settings.Cutoff)
}

// EscapeMessage tells the last-place team where it stands.
func EscapeMessage(r *bracket.Result) string {
	e := r.Escape
	if e.LastPlace == "" {
		return ""
	}
	last := r.Name(e.LastPlace)

	if e.SeasonOver {
		if r.TiebreakUsed {
			return fmt.Sprintf("SEASON OVER - ALL TIED! Week %d says %s is your official %s!", r.Settings.Cutoff, last, LabelLast)
		}
		return fmt.Sprintf("Bracket complete! Your %d %s champion is... %s", r.Season, LabelLast, last)
	}
	if e.PointsNeeded > 0 {
		return fmt.Sprintf("%s needs %.2f more points over the next %d week(s) to escape dead last!", last, e.PointsNeeded, e.RemainingWeeks)
	}
	return fmt.Sprintf("%s is currently safe... for now.", last)
}

// Standings writes the regular-season table with the cohort marked.
func Standings(w io.Writer, report *service.StandingsReport) {
	inCohort := make(map[bracket.TeamID]bool, len(report.Cohort))
	for _, id := range report.Cohort {
		inCohort[id] = true
	}

	fmt.Fprintf(w, "%d standings through Week %d - league %s\n", report.Season, report.Cutoff, report.LeagueID)
	t := newTable(w)
	t.AppendHeader(table.Row{"Rank", "Team", "Record", "Win %", "PF", ""})
	for _, entry := range report.Standings {
		marker := ""
		if inCohort[entry.TeamID] {
			marker = "losers bracket"
		}
		t.AppendRow(table.Row{
			entry.Rank,
			report.Name(entry.TeamID),
			entry.Record(),
			fmt.Sprintf("%.3f", entry.WinFraction),
			fmt.Sprintf("%.2f", entry.PointsFor),
			marker,
		})
	}
	t.Render()
}

// StandingsText renders Standings into a string.
func StandingsText(report *service.StandingsReport) string {
	var buf bytes.Buffer
	Standings(&buf, report)
	return buf.String()
}

// Matchups writes one week of pairings.
func Matchups(w io.Writer, wm *service.WeekMatchups) {
	name := func(id bracket.TeamID) string {
		if info, ok := wm.Teams[id]; ok && info.Name != "" {
			return info.Name
		}
		return string(id)
	}

	fmt.Fprintf(w, "Week %d matchups\n", wm.Week)
	t := newTable(w)
	t.AppendHeader(table.Row{"Home", "Score", "Away", "Score"})
	for _, m := range wm.Matchups {
		away, awayScore := "BYE", ""
		if m.Away.TeamID != "" {
			away, awayScore = name(m.Away.TeamID), fmt.Sprintf("%.2f", m.Away.Score)
		}
		t.AppendRow(table.Row{name(m.Home.TeamID), fmt.Sprintf("%.2f", m.Home.Score), away, awayScore})
	}
	t.Render()
}

// MatchupsText renders Matchups into a string.
func MatchupsText(wm *service.WeekMatchups) string {
	var buf bytes.Buffer
	Matchups(&buf, wm)
	return buf.String()
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	return t
}
