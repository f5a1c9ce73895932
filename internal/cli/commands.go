package cli

import (
	"context"
	"encoding/base64"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sakif/caloriesnap/internal/apperror"
	"github.com/sakif/caloriesnap/internal/history"
	"github.com/sakif/caloriesnap/internal/model"
	"github.com/sakif/caloriesnap/internal/nutrition"
	"github.com/sakif/caloriesnap/internal/remote"
	"github.com/sakif/caloriesnap/internal/store"
	"github.com/sakif/caloriesnap/internal/validation"
	"github.com/sakif/caloriesnap/internal/views"
)

func (a *App) signup(ctx context.Context, args []string) error {
	email, password, err := credentials(args)
	if err != nil {
		return err
	}
	// Same rules as the server so a typo fails without a round trip.
	if err := validation.Credentials(strings.TrimSpace(email), password); err != nil {
		return err
	}

	s, err := a.client.Signup(ctx, email, password)
	if err != nil {
		return err
	}
	if err := a.saveSession(s.User.Email); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Signed up as %s\n", s.User.Email)
	return nil
}

func (a *App) login(ctx context.Context, args []string) error {
	email, password, err := credentials(args)
	if err != nil {
		return err
	}

	s, err := a.client.Login(ctx, email, password)
	if err != nil {
		return err
	}
	if err := a.saveSession(s.User.Email); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Logged in as %s\n", s.User.Email)
	return nil
}

func (a *App) logout(ctx context.Context, _ []string) error {
	if err := a.client.Logout(ctx); err != nil {
		a.logger.Warn("server logout failed", slog.String("error", err.Error()))
	}
	a.store.Reset()
	if err := a.saveSession(""); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

func credentials(args []string) (email, password string, err error) {
	if len(args) != 2 {
		return "", "", fmt.Errorf("%w: expected <email> <password>", ErrUsage)
	}
	return args[0], args[1], nil
}

// today renders the dashboard for the current local day.
func (a *App) today(ctx context.Context, _ []string) error {
	fmt.Fprint(a.out, a.styles.dashboard(a.now(), a.dashboard(a.store.Snapshot())))
	return nil
}

// dashboard derives today's view from a store snapshot.
func (a *App) dashboard(snap store.Snapshot) views.Dashboard {
	return views.BuildDashboard(snap.Profile, logsOn(snap.Logs, a.now()), a.cfg.Goals)
}

func logsOn(logs []model.Log, day time.Time) []model.Log {
	start, end := history.DayRange(day)
	out := make([]model.Log, 0, len(logs))
	for _, l := range logs {
		if !l.CreatedAt.Before(start) && !l.CreatedAt.After(end) {
			out = append(out, l)
		}
	}
	return out
}

// add logs a manual entry.
func (a *App) add(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	meal := fs.String("meal", "", "meal slot")
	name := fs.String("name", "", "food name")
	cal := fs.Float64("cal", 0, "calories")
	protein := fs.Float64("protein", 0, "protein grams")
	carbs := fs.Float64("carbs", 0, "carbs grams")
	fats := fs.Float64("fats", 0, "fats grams")
	if _, err := parseFlags(fs, args); err != nil {
		return err
	}

	mt, err := mealFlag(*meal, a.now())
	if err != nil {
		return err
	}

	p, _ := a.store.Profile()
	l := model.Log{
		ID:        uuid.NewString(),
		UserID:    p.ID,
		FoodName:  strings.TrimSpace(*name),
		Calories:  *cal,
		Protein:   *protein,
		Carbs:     *carbs,
		Fats:      *fats,
		MealType:  mt,
		CreatedAt: a.now().UTC(),
	}
	if err := a.syncer.AddUserLog(ctx, l); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Added %s (%s kcal) to %s\n", l.FoodName, formatNumber(l.Calories), l.MealType)
	return nil
}

func (a *App) search(ctx context.Context, args []string) error {
	return a.lookup(ctx, "search", args, a.client.SearchFoods)
}

func (a *App) estimate(ctx context.Context, args []string) error {
	return a.lookup(ctx, "estimate", args, a.client.EstimateFoods)
}

// lookup lists candidates and, with -pick, logs one of them.
func (a *App) lookup(ctx context.Context, name string, args []string, fetch func(context.Context, string) (*remote.Foods, error)) error {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	meal := fs.String("meal", "", "meal slot for -pick")
	pick := fs.Int("pick", 0, "log the n-th result")
	words, err := parseFlags(fs, args)
	if err != nil {
		return err
	}
	query := strings.TrimSpace(strings.Join(words, " "))
	if query == "" {
		return fmt.Errorf("%w: %s needs a query", ErrUsage, name)
	}

	found, err := fetch(ctx, query)
	if err != nil {
		return err
	}
	// A failed lookup shows as no results; the reason goes to the log.
	items := found.Items
	if found.Status == nutrition.StatusFailed {
		a.logger.Warn("food lookup failed", slog.String("kind", name), slog.String("error", found.Error))
		items = nil
	}

	if *pick == 0 {
		fmt.Fprint(a.out, a.styles.foods(items))
		return nil
	}
	if *pick < 1 || *pick > len(items) {
		return apperror.ValidationFailed("pick", fmt.Sprintf("pick must be between 1 and %d", len(items)))
	}
	return a.logItem(ctx, items[*pick-1], *meal)
}

// maxImageBytes keeps a base64-encoded photo and its JSON envelope under the
// server's 10 MiB body limit.
const maxImageBytes = 7 << 20

// analyze sends a photo for estimation and, with -log, logs the result.
func (a *App) analyze(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("analyze", flag.ContinueOnError)
	meal := fs.String("meal", "", "meal slot for -log")
	logIt := fs.Bool("log", false, "log the estimate")
	paths, err := parseFlags(fs, args)
	if err != nil {
		return err
	}
	if len(paths) != 1 {
		return fmt.Errorf("%w: analyze needs one image path", ErrUsage)
	}

	info, err := os.Stat(paths[0])
	if err != nil {
		return fmt.Errorf("cli: reading image: %w", err)
	}
	if info.Size() > maxImageBytes {
		return apperror.ValidationFailed("image", fmt.Sprintf("Image must be %d MB or smaller", maxImageBytes>>20))
	}

	data, err := os.ReadFile(paths[0])
	if err != nil {
		return fmt.Errorf("cli: reading image: %w", err)
	}

	res, err := a.client.AnalyzeImage(ctx, base64.StdEncoding.EncodeToString(data))
	if err != nil {
		return err
	}
	if res.Status != nutrition.StatusOK || res.Item == nil {
		if res.Status == nutrition.StatusFailed {
			a.logger.Warn("image analysis failed", slog.String("error", res.Error))
		}
		fmt.Fprint(a.out, a.styles.foods(nil))
		return nil
	}

	fmt.Fprint(a.out, a.styles.foods([]model.FoodItem{*res.Item}))
	if !*logIt {
		return nil
	}
	return a.logItem(ctx, *res.Item, *meal)
}

func (a *App) logItem(ctx context.Context, item model.FoodItem, meal string) error {
	mt, err := mealFlag(meal, a.now())
	if err != nil {
		return err
	}
	l, err := a.syncer.LogFood(ctx, item, mt, a.now())
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Added %s (%s kcal) to %s\n", l.FoodName, formatNumber(l.Calories), l.MealType)
	return nil
}

// remove deletes a log by full ID or by an unambiguous prefix of a loaded log.
func (a *App) remove(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: delete needs a log id", ErrUsage)
	}
	id, err := a.resolveLogID(args[0])
	if err != nil {
		return err
	}
	if err := a.syncer.DeleteUserLog(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Deleted %s\n", shortID(id))
	return nil
}

func (a *App) resolveLogID(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	var matches []string
	for _, l := range a.store.Logs() {
		if l.ID == ref {
			return ref, nil
		}
		if strings.HasPrefix(l.ID, ref) {
			matches = append(matches, l.ID)
		}
	}
	switch len(matches) {
	case 0:
		// Not loaded; let the server decide. Absent IDs delete fine.
		return ref, nil
	case 1:
		return matches[0], nil
	default:
		return "", apperror.ValidationFailed("id", fmt.Sprintf("%q matches %d logs; use more characters", ref, len(matches)))
	}
}

// goals shows the goal set, or saves a new one when any flag is given.
func (a *App) goals(ctx context.Context, args []string) error {
	p, _ := a.store.Profile()
	g := p.Goals(a.cfg.Goals)

	fs := flag.NewFlagSet("goals", flag.ContinueOnError)
	fs.IntVar(&g.DailyCalories, "daily", g.DailyCalories, "daily calories")
	fs.IntVar(&g.Protein, "protein", g.Protein, "protein grams")
	fs.IntVar(&g.Carbs, "carbs", g.Carbs, "carbs grams")
	fs.IntVar(&g.Fats, "fats", g.Fats, "fats grams")
	fs.IntVar(&g.Breakfast, "breakfast", g.Breakfast, "breakfast calories")
	fs.IntVar(&g.Lunch, "lunch", g.Lunch, "lunch calories")
	fs.IntVar(&g.Dinner, "dinner", g.Dinner, "dinner calories")
	fs.IntVar(&g.Snack, "snack", g.Snack, "snack calories")
	auto := fs.Bool("auto", false, "split the daily goal across meals")
	if _, err := parseFlags(fs, args); err != nil {
		return err
	}

	if fs.NFlag() == 0 {
		fmt.Fprint(a.out, a.styles.goals(g))
		return nil
	}
	if *auto {
		g.Breakfast, g.Lunch, g.Dinner, g.Snack = model.AutoDistribute(g.DailyCalories)
	}

	if err := a.syncer.SaveGoals(ctx, g); err != nil {
		return err
	}
	fmt.Fprint(a.out, a.styles.goals(g))
	fmt.Fprintln(a.out, "Goals saved")
	return nil
}

// month renders the calendar for -month (default: this month).
func (a *App) month(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	monthFlag := fs.String("month", "", "YYYY-MM")
	if _, err := parseFlags(fs, args); err != nil {
		return err
	}

	month := a.now()
	if *monthFlag != "" {
		m, err := time.ParseInLocation("2006-01", *monthFlag, time.Local)
		if err != nil {
			return apperror.ValidationFailed("month", "month must look like 2024-06")
		}
		month = m
	}

	cal, err := a.history.Month(ctx, month)
	if err != nil {
		return err
	}
	fmt.Fprint(a.out, a.styles.calendar(month, cal, history.GoalFor(a.store.Profile())))
	return nil
}

// day renders one day's logs (default: today).
func (a *App) day(ctx context.Context, args []string) error {
	d := a.now()
	if len(args) > 0 {
		parsed, err := time.ParseInLocation(time.DateOnly, args[0], time.Local)
		if err != nil {
			return apperror.ValidationFailed("day", "day must look like 2024-06-01")
		}
		d = parsed
	}

	logs, err := a.history.Day(ctx, d)
	if err != nil {
		return err
	}
	fmt.Fprint(a.out, a.styles.day(d, logs))
	return nil
}

// mealFlag parses -meal; an empty value picks the slot by time of day.
func mealFlag(v string, now time.Time) (model.MealType, error) {
	if strings.TrimSpace(v) == "" {
		return mealForHour(now.Hour()), nil
	}
	mt, ok := model.ParseMealType(v)
	if !ok {
		return "", apperror.ValidationFailed("meal", "Meal type must be one of breakfast, lunch, dinner, snack")
	}
	return mt, nil
}

func mealForHour(h int) model.MealType {
	switch {
	case h >= 5 && h < 11:
		return model.MealBreakfast
	case h >= 11 && h < 17:
		return model.MealLunch
	case h >= 17 && h < 22:
		return model.MealDinner
	default:
		return model.MealSnack
	}
}
