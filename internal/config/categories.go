package config

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/fakeyudi/cliptag/internal/annotation"
)

// Vocabulary lists the selectable values per label category. The first
// entry of each list is the category's unlabeled sentinel.
type Vocabulary struct {
	Posture       []string
	Behaviors     []string
	ActivityTypes []string
	Parameters    []string
	Situations    []string
}

// DefaultVocabulary is used when no categories file is configured.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		Posture:       []string{annotation.PostureUnlabeled, "Sitting", "Standing", "Lying", "Kneeling", "Squatting", "Walking", "Running", "Cycling"},
		Behaviors:     []string{annotation.BehaviorUnlabeled, "Eating", "Drinking", "Reading", "Screen use", "Socializing", "Chores", "Exercising", "Commuting", "Sleeping"},
		ActivityTypes: []string{annotation.ActivityTypeUnlabeled, "Sedentary", "Light", "Moderate", "Vigorous"},
		Parameters:    []string{annotation.ParameterUnlabeled, "Carrying load", "Indoors", "Outdoors", "Stairs", "Talking"},
		Situations:    []string{annotation.SituationUnlabeled, "Free living", "Lab protocol", "Camera obstructed", "Subject out of frame"},
	}
}

// For returns the values of the category named as in annotation.CategoryOrder.
func (v Vocabulary) For(category string) []string {
	switch category {
	case annotation.CategoryPosture:
		return v.Posture
	case annotation.CategoryBehavior:
		return v.Behaviors
	case annotation.CategoryActivityType:
		return v.ActivityTypes
	case annotation.CategoryParameters:
		return v.Parameters
	case annotation.CategorySituation:
		return v.Situations
	}
	return nil
}

// LoadCategories reads a CSV whose header names the categories (POSTURE,
// HIGH LEVEL BEHAVIOR, PA TYPE, Behavioral Parameters, Experimental
// situation). Each non-empty cell adds a value to its column's category.
// An empty path returns DefaultVocabulary.
func LoadCategories(path string) (Vocabulary, error) {
	if path == "" {
		return DefaultVocabulary(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return Vocabulary{}, fmt.Errorf("opening categories file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if err != nil {
		return Vocabulary{}, &ParseError{Path: path, Err: err}
	}

	v := Vocabulary{
		Posture:       []string{annotation.PostureUnlabeled},
		Behaviors:     []string{annotation.BehaviorUnlabeled},
		ActivityTypes: []string{annotation.ActivityTypeUnlabeled},
		Parameters:    []string{annotation.ParameterUnlabeled},
		Situations:    []string{annotation.SituationUnlabeled},
	}
	cols := make([]*[]string, len(header))
	for i, h := range header {
		switch h {
		case annotation.CategoryPosture:
			cols[i] = &v.Posture
		case annotation.CategoryBehavior:
			cols[i] = &v.Behaviors
		case annotation.CategoryActivityType:
			cols[i] = &v.ActivityTypes
		case annotation.CategoryParameters:
			cols[i] = &v.Parameters
		case annotation.CategorySituation:
			cols[i] = &v.Situations
		}
	}

	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Vocabulary{}, &ParseError{Path: path, Err: err}
		}
		for i, cell := range row {
			if i >= len(cols) || cols[i] == nil || cell == "" {
				continue
			}
			if !slices.Contains(*cols[i], cell) {
				*cols[i] = append(*cols[i], cell)
			}
		}
	}
	return v, nil
}
