package quiz

import "github.com/futig/quiz-chat/internal/entity"

// ReferenceStart is where the health assessment begins. The welcome question
// is kept in the graph for front-ends that show it as a splash card.
const ReferenceStart = "age"

// ReferenceQuestions returns the definitions of the health assessment.
func ReferenceQuestions() []entity.QuestionDefinition {
	return []entity.QuestionDefinition{
		{
			ID:     "welcome",
			Kind:   entity.KindSingleChoice,
			Prompt: "Welcome to Overang AI Health Platform! Let's start with some basic information to personalize your experience.",
			Options: []entity.Option{
				{ID: "start", Label: "Let's get started", Value: "start"},
			},
			Next: entity.Fixed("age"),
		},
		{
			ID:          "age",
			Kind:        entity.KindSlider,
			Prompt:      "Select your age",
			Description: "This helps us provide age-appropriate recommendations",
			Label:       "Age",
			Validation:  &entity.Validation{Required: true, Min: entity.Bound(18), Max: entity.Bound(100)},
			Next:        entity.Fixed("weight"),
		},
		{
			ID:          "weight",
			Kind:        entity.KindNumber,
			Prompt:      "What is your current weight?",
			Description: "Please enter your weight in pounds (lbs)",
			Label:       "Weight",
			Validation:  &entity.Validation{Required: true, Min: entity.Bound(50), Max: entity.Bound(500)},
			Next:        entity.Fixed("activity"),
		},
		{
			ID:     "activity",
			Kind:   entity.KindSingleChoice,
			Prompt: "How would you describe your current activity level?",
			Options: []entity.Option{
				{ID: "sedentary", Label: "Sedentary (little to no exercise)", Value: "sedentary"},
				{ID: "light", Label: "Lightly active (light exercise 1-3 days/week)", Value: "light"},
				{ID: "moderate", Label: "Moderately active (moderate exercise 3-5 days/week)", Value: "moderate"},
				{ID: "very", Label: "Very active (hard exercise 6-7 days/week)", Value: "very"},
				{ID: "extra", Label: "Extra active (very hard exercise, physical job)", Value: "extra"},
			},
			Validation: &entity.Validation{Required: true},
			Next:       entity.Fixed("nutrition"),
		},
		{
			ID:          "nutrition",
			Kind:        entity.KindMultiChoice,
			Prompt:      "Which of these nutrition goals are important to you?",
			Description: "Select all that apply",
			Options: []entity.Option{
				{ID: "weight_loss", Label: "Weight loss", Value: "weight_loss"},
				{ID: "muscle_gain", Label: "Muscle gain", Value: "muscle_gain"},
				{ID: "energy", Label: "Increased energy", Value: "energy"},
				{ID: "heart_health", Label: "Heart health", Value: "heart_health"},
				{ID: "diabetes", Label: "Blood sugar management", Value: "diabetes"},
				{ID: "general", Label: "General wellness", Value: "general"},
			},
			Validation: &entity.Validation{Required: true},
			Next:       entity.Fixed("conditions"),
		},
		{
			ID:          "conditions",
			Kind:        entity.KindMultiChoice,
			Prompt:      "Multiple choice conditions",
			Description: "Identify medical conditions that you may apply to you",
			Options: []entity.Option{
				{ID: "high_bp", Label: "High blood pressure", Value: "high_bp"},
				{ID: "high_glucose", Label: "High glucose", Value: "high_glucose"},
				{ID: "migraines", Label: "Migraines", Value: "migraines"},
				{ID: "arthritis", Label: "Arthritis", Value: "arthritis"},
				{ID: "depression", Label: "Depression", Value: "depression"},
				{ID: "anxiety", Label: "Anxiety", Value: "anxiety"},
			},
			Next: entity.Fixed("checkup"),
		},
		{
			ID:     "checkup",
			Kind:   entity.KindSingleChoice,
			Prompt: "When was your last medical checkup?",
			Options: []entity.Option{
				{ID: "recent", Label: "Within the last 6 months", Value: "recent"},
				{ID: "year", Label: "Within the last year", Value: "year"},
				{ID: "two_years", Label: "1-2 years ago", Value: "two_years"},
				{ID: "longer", Label: "More than 2 years ago", Value: "longer"},
				{ID: "never", Label: "Never had a checkup", Value: "never"},
			},
			Validation: &entity.Validation{Required: true},
			Next:       entity.Fixed("goals"),
		},
		{
			ID:          "goals",
			Kind:        entity.KindText,
			Prompt:      "What are your main health and wellness goals?",
			Description: "Please describe what you hope to achieve with our platform",
			Validation:  &entity.Validation{Required: true},
			Next:        entity.Fixed(entity.CompleteID),
		},
	}
}

// ReferenceGraph builds the health assessment graph.
func ReferenceGraph() *Graph {
	g, err := NewGraph(ReferenceStart, ReferenceQuestions()...)
	if err != nil {
		panic(err)
	}
	return g
}
