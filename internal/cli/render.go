package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/sakif/caloriesnap/internal/history"
	"github.com/sakif/caloriesnap/internal/model"
	"github.com/sakif/caloriesnap/internal/views"
)

const barWidth = 24

// styles are bound to the output's renderer, so piping to a file or a test
// buffer produces plain text.
type styles struct {
	title  lipgloss.Style
	muted  lipgloss.Style
	accent lipgloss.Style
	good   lipgloss.Style
	bad    lipgloss.Style
	box    lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		title:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("#F5A524")),
		muted:  r.NewStyle().Foreground(lipgloss.Color("#7A7F8C")),
		accent: r.NewStyle().Foreground(lipgloss.Color("#5EA1FF")),
		good:   r.NewStyle().Foreground(lipgloss.Color("#3FB950")),
		bad:    r.NewStyle().Foreground(lipgloss.Color("#F85149")).Bold(true),
		box: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#30363D")).
			Padding(0, 1),
	}
}

func (s styles) bar(pct float64) string {
	filled := int(pct / 100 * barWidth)
	if filled > barWidth {
		filled = barWidth
	}
	style := s.good
	if pct >= 100 {
		style = s.bad
	}
	return style.Render(strings.Repeat("█", filled)) + s.muted.Render(strings.Repeat("░", barWidth-filled))
}

// dashboard renders the "today" screen.
func (s styles) dashboard(day time.Time, d views.Dashboard) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n", s.title.Render("Today · "+day.Format("Mon 2 Jan 2006")))
	fmt.Fprintf(&b, "%s %s / %d kcal  (%s left)\n",
		s.bar(d.Progress),
		formatNumber(d.Consumed),
		d.Goals.DailyCalories,
		formatNumber(d.Remaining),
	)
	fmt.Fprintf(&b, "%s\n",
		s.muted.Render(fmt.Sprintf("protein %sg / %dg · carbs %sg / %dg · fats %sg / %dg",
			formatNumber(d.Macros.Protein), d.Goals.Protein,
			formatNumber(d.Macros.Carbs), d.Goals.Carbs,
			formatNumber(d.Macros.Fats), d.Goals.Fats,
		)),
	)

	for _, m := range d.Meals {
		fmt.Fprintf(&b, "\n%s %s\n",
			s.accent.Render(fmt.Sprintf("%-10s", mealLabel(m.Type))),
			s.muted.Render(fmt.Sprintf("%s / %d kcal", formatNumber(m.Calories), m.Goal)),
		)
		if len(m.Logs) == 0 {
			fmt.Fprintf(&b, "  %s\n", s.muted.Render("nothing logged"))
			continue
		}
		for _, l := range m.Logs {
			fmt.Fprintf(&b, "  %-28s %6s kcal  %s\n", l.FoodName, formatNumber(l.Calories), s.muted.Render(shortID(l.ID)))
		}
	}

	return s.box.Render(strings.TrimRight(b.String(), "\n")) + "\n"
}

// summary is the one-line dashboard printed after a change.
func (s styles) summary(d views.Dashboard) string {
	return s.muted.Render(fmt.Sprintf("Today %s / %d kcal · %s left",
		formatNumber(d.Consumed), d.Goals.DailyCalories, formatNumber(d.Remaining))) + "\n"
}

// foods renders a numbered list of estimates; the numbers are what -pick
// refers to.
func (s styles) foods(items []model.FoodItem) string {
	if len(items) == 0 {
		return s.muted.Render("No results") + "\n"
	}

	var b strings.Builder
	for i, it := range items {
		fmt.Fprintf(&b, "%s %-32s %6s kcal  %s",
			s.accent.Render(fmt.Sprintf("%2d.", i+1)),
			it.FoodName,
			formatNumber(it.Calories),
			s.muted.Render(macroLine(it)),
		)
		if it.Confidence != "" {
			fmt.Fprintf(&b, "  %s", s.muted.Render("("+it.Confidence+")"))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// calendar renders a month grid, Monday first. Over-goal days are red,
// under-goal days green, days without logs plain.
func (s styles) calendar(month time.Time, cal history.Calendar, goal int) string {
	start, end := history.MonthRange(month)

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", s.title.Render(start.Format("January 2006")))
	fmt.Fprintf(&b, "%s\n", s.muted.Render(" Mo  Tu  We  Th  Fr  Sa  Su"))

	offset := (int(start.Weekday()) + 6) % 7
	b.WriteString(strings.Repeat("    ", offset))

	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		cell := fmt.Sprintf("%3d", d.Day())
		switch cal.Classify(d, goal) {
		case history.StatusOver:
			cell = s.bad.Render(cell)
		case history.StatusUnder:
			cell = s.good.Render(cell)
		}
		b.WriteString(cell + " ")
		if d.Weekday() == time.Sunday {
			b.WriteString("\n")
		}
	}

	var over, under int
	var total float64
	for k, v := range cal {
		if !strings.HasPrefix(k, start.Format("2006-01")) {
			continue
		}
		total += v
		if v > float64(goal) {
			over++
		} else {
			under++
		}
	}
	fmt.Fprintf(&b, "\n%s\n", s.muted.Render(fmt.Sprintf(
		"goal %d kcal · %d under · %d over · %s kcal logged", goal, under, over, formatNumber(total))))
	return b.String()
}

// day renders one day's logs, oldest first.
func (s styles) day(day time.Time, logs []model.Log) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", s.title.Render(day.Format("Monday 2 January 2006")))
	if len(logs) == 0 {
		fmt.Fprintf(&b, "%s\n", s.muted.Render("No logs for this day"))
		return b.String()
	}
	for _, l := range logs {
		fmt.Fprintf(&b, "%s  %-9s %-28s %6s kcal\n",
			s.muted.Render(l.CreatedAt.Local().Format("15:04")),
			mealLabel(l.MealType),
			l.FoodName,
			formatNumber(l.Calories),
		)
	}
	fmt.Fprintf(&b, "%s\n", s.muted.Render("total "+formatNumber(views.TotalCalories(logs))+" kcal"))
	return b.String()
}

func (s styles) goals(g model.Goals) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", s.title.Render("Goals"))
	fmt.Fprintf(&b, "daily     %5d kcal\n", g.DailyCalories)
	fmt.Fprintf(&b, "protein   %5d g\ncarbs     %5d g\nfats      %5d g\n", g.Protein, g.Carbs, g.Fats)
	for _, mt := range model.MealTypes {
		fmt.Fprintf(&b, "%-9s %5d kcal\n", strings.ToLower(mealLabel(mt)), g.Meal(mt))
	}
	return b.String()
}

func mealLabel(m model.MealType) string {
	if m == "" {
		return ""
	}
	s := string(m)
	return strings.ToUpper(s[:1]) + s[1:]
}

func macroLine(it model.FoodItem) string {
	part := func(label string, v *float64) string {
		if v == nil {
			return label + " ?"
		}
		return label + " " + formatNumber(*v) + "g"
	}
	return part("P", it.Protein) + " " + part("C", it.Carbs) + " " + part("F", it.Fats)
}

// formatNumber drops a trailing ".0".
func formatNumber(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.1f", v)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
