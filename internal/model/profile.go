package model

import "math"

// Profile holds one user's nutrition goals. There is exactly one per user and
// its ID is the user's ID.
//
// The JSON/DB field names are part of the wire contract with stored data and
// must not change. The four meal goals are nullable: a nil value means "use
// the configured default" (see GoalDefaults), not zero.
type Profile struct {
	ID               string  `json:"id"                   db:"id"`
	Email            *string `json:"email"                db:"email"`
	DailyCalorieGoal int     `json:"daily_calorie_goal"   db:"daily_calorie_goal"`
	ProteinGoal      int     `json:"protein_goal"         db:"protein_goal"`
	CarbsGoal        int     `json:"carbs_goal"           db:"carbs_goal"`
	FatsGoal         int     `json:"fats_goal"            db:"fats_goal"`
	BreakfastGoal    *int    `json:"breakfast_goal"       db:"breakfast_goal"`
	LunchGoal        *int    `json:"lunch_goal"           db:"lunch_goal"`
	DinnerGoal       *int    `json:"dinner_goal"          db:"dinner_goal"`
	SnackGoal        *int    `json:"snack_goal"           db:"snack_goal"`
}

// GoalDefaults is the single place where absent goals get their values.
// Read sites never hard-code fallbacks; they resolve through Profile.Goals.
type GoalDefaults struct {
	DailyCalories int `toml:"daily_calories"`
	Protein       int `toml:"protein"`
	Carbs         int `toml:"carbs"`
	Fats          int `toml:"fats"`
	Breakfast     int `toml:"breakfast"`
	Lunch         int `toml:"lunch"`
	Dinner        int `toml:"dinner"`
	Snack         int `toml:"snack"`
}

// DefaultGoals returns the stock goal set used for new profiles.
func DefaultGoals() GoalDefaults {
	return GoalDefaults{
		DailyCalories: 2000,
		Protein:       150,
		Carbs:         250,
		Fats:          70,
		Breakfast:     500,
		Lunch:         700,
		Dinner:        600,
		Snack:         200,
	}
}

// Goals is a fully resolved goal set: every value present.
type Goals struct {
	DailyCalories int `json:"daily_calorie_goal"`
	Protein       int `json:"protein_goal"`
	Carbs         int `json:"carbs_goal"`
	Fats          int `json:"fats_goal"`
	Breakfast     int `json:"breakfast_goal"`
	Lunch         int `json:"lunch_goal"`
	Dinner        int `json:"dinner_goal"`
	Snack         int `json:"snack_goal"`
}

// Meal returns the goal for one slot. Unknown slots return 0.
func (g Goals) Meal(m MealType) int {
	switch m {
	case MealBreakfast:
		return g.Breakfast
	case MealLunch:
		return g.Lunch
	case MealDinner:
		return g.Dinner
	case MealSnack:
		return g.Snack
	}
	return 0
}

// MealSum is the sum of the four slot goals.
func (g Goals) MealSum() int {
	return g.Breakfast + g.Lunch + g.Dinner + g.Snack
}

// Update converts a resolved goal set into a profile update that writes every
// goal field.
func (g Goals) Update() ProfileUpdate {
	return ProfileUpdate{
		DailyCalorieGoal: intPtr(g.DailyCalories),
		ProteinGoal:      intPtr(g.Protein),
		CarbsGoal:        intPtr(g.Carbs),
		FatsGoal:         intPtr(g.Fats),
		BreakfastGoal:    intPtr(g.Breakfast),
		LunchGoal:        intPtr(g.Lunch),
		DinnerGoal:       intPtr(g.Dinner),
		SnackGoal:        intPtr(g.Snack),
	}
}

// Goals resolves the profile's goals against d. Only the nullable meal slots
// fall back; the daily and macro goals are stored values.
func (p Profile) Goals(d GoalDefaults) Goals {
	return Goals{
		DailyCalories: p.DailyCalorieGoal,
		Protein:       p.ProteinGoal,
		Carbs:         p.CarbsGoal,
		Fats:          p.FatsGoal,
		Breakfast:     valueOr(p.BreakfastGoal, d.Breakfast),
		Lunch:         valueOr(p.LunchGoal, d.Lunch),
		Dinner:        valueOr(p.DinnerGoal, d.Dinner),
		Snack:         valueOr(p.SnackGoal, d.Snack),
	}
}

// NewProfile builds the profile created implicitly on a user's first session.
func NewProfile(userID, email string, d GoalDefaults) Profile {
	p := Profile{
		ID:               userID,
		DailyCalorieGoal: d.DailyCalories,
		ProteinGoal:      d.Protein,
		CarbsGoal:        d.Carbs,
		FatsGoal:         d.Fats,
		BreakfastGoal:    intPtr(d.Breakfast),
		LunchGoal:        intPtr(d.Lunch),
		DinnerGoal:       intPtr(d.Dinner),
		SnackGoal:        intPtr(d.Snack),
	}
	if email != "" {
		p.Email = &email
	}
	return p
}

// ProfileUpdate is a partial profile. A nil field is absent and leaves the
// stored value alone; omitempty keeps absent fields off the wire.
type ProfileUpdate struct {
	Email            *string `json:"email,omitempty"`
	DailyCalorieGoal *int    `json:"daily_calorie_goal,omitempty"`
	ProteinGoal      *int    `json:"protein_goal,omitempty"`
	CarbsGoal        *int    `json:"carbs_goal,omitempty"`
	FatsGoal         *int    `json:"fats_goal,omitempty"`
	BreakfastGoal    *int    `json:"breakfast_goal,omitempty"`
	LunchGoal        *int    `json:"lunch_goal,omitempty"`
	DinnerGoal       *int    `json:"dinner_goal,omitempty"`
	SnackGoal        *int    `json:"snack_goal,omitempty"`
}

// IsEmpty reports whether the update carries no fields at all.
func (u ProfileUpdate) IsEmpty() bool {
	return u == ProfileUpdate{}
}

// Apply returns p with every present field of u copied over (shallow merge).
func (u ProfileUpdate) Apply(p Profile) Profile {
	if u.Email != nil {
		p.Email = u.Email
	}
	if u.DailyCalorieGoal != nil {
		p.DailyCalorieGoal = *u.DailyCalorieGoal
	}
	if u.ProteinGoal != nil {
		p.ProteinGoal = *u.ProteinGoal
	}
	if u.CarbsGoal != nil {
		p.CarbsGoal = *u.CarbsGoal
	}
	if u.FatsGoal != nil {
		p.FatsGoal = *u.FatsGoal
	}
	if u.BreakfastGoal != nil {
		p.BreakfastGoal = u.BreakfastGoal
	}
	if u.LunchGoal != nil {
		p.LunchGoal = u.LunchGoal
	}
	if u.DinnerGoal != nil {
		p.DinnerGoal = u.DinnerGoal
	}
	if u.SnackGoal != nil {
		p.SnackGoal = u.SnackGoal
	}
	return p
}

// AutoDistribute splits a daily calorie goal across the meal slots:
// breakfast 25%, lunch 35%, dinner 30% (each rounded), snack takes whatever
// is left so the four always sum to daily exactly.
func AutoDistribute(daily int) (breakfast, lunch, dinner, snack int) {
	total := float64(daily)
	breakfast = int(math.Round(total * 0.25))
	lunch = int(math.Round(total * 0.35))
	dinner = int(math.Round(total * 0.30))
	snack = daily - breakfast - lunch - dinner
	return breakfast, lunch, dinner, snack
}

func valueOr(v *int, fallback int) int {
	if v == nil {
		return fallback
	}
	return *v
}

func intPtr(v int) *int { return &v }
