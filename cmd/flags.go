package cmd

import (
	"errors"
	"fmt"
	"slices"
	"strconv"

	"github.com/spf13/pflag"

	"github.com/fakeyudi/cliptag/internal/annotation"
	"github.com/fakeyudi/cliptag/internal/config"
)

// timeFlag is a media position given as seconds or as a clock.
type timeFlag float64

func (t *timeFlag) String() string { return strconv.FormatFloat(float64(*t), 'f', -1, 64) }

func (t *timeFlag) Set(s string) error {
	v, err := parseTime(s)
	if err != nil {
		return err
	}
	*t = timeFlag(v)
	return nil
}

func (t *timeFlag) Type() string { return "time" }

// labelFlags are the per-category label options shared by add and label.
type labelFlags struct {
	posture   string
	behaviors []string
	paType    string
	params    []string
	situation string
	notes     string
}

func (f *labelFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.posture, "posture", "", "posture label")
	fs.StringSliceVar(&f.behaviors, "behavior", nil, "high level behavior (repeatable)")
	fs.StringVar(&f.paType, "pa-type", "", "physical activity type")
	fs.StringSliceVar(&f.params, "param", nil, "behavioral parameter (repeatable)")
	fs.StringVar(&f.situation, "situation", "", "experimental situation")
	fs.StringVar(&f.notes, "notes", "", "free-text notes")
}

// changed reports whether any label option was given.
func (f *labelFlags) changed(fs *pflag.FlagSet) bool {
	for _, name := range []string{"posture", "behavior", "pa-type", "param", "situation", "notes"} {
		if fs.Changed(name) {
			return true
		}
	}
	return false
}

// apply overrides the categories that were given on the command line. Given
// values must come from vocab; untouched categories are kept as they are.
func (f *labelFlags) apply(base annotation.Labels, fs *pflag.FlagSet, vocab config.Vocabulary) (annotation.Labels, error) {
	l := base.Clone()
	check := func(category string, vals ...string) error {
		allowed := vocab.For(category)
		for _, v := range vals {
			if !slices.Contains(allowed, v) {
				return fmt.Errorf("unknown %s value %q", category, v)
			}
		}
		return nil
	}

	var errs []error
	if fs.Changed("posture") {
		l.Posture = f.posture
		errs = append(errs, check(annotation.CategoryPosture, f.posture))
	}
	if fs.Changed("behavior") {
		l.Behaviors = slices.Clone(f.behaviors)
		errs = append(errs, check(annotation.CategoryBehavior, f.behaviors...))
	}
	if fs.Changed("pa-type") {
		l.ActivityType = f.paType
		errs = append(errs, check(annotation.CategoryActivityType, f.paType))
	}
	if fs.Changed("param") {
		l.Parameters = slices.Clone(f.params)
		errs = append(errs, check(annotation.CategoryParameters, f.params...))
	}
	if fs.Changed("situation") {
		l.Situation = f.situation
		errs = append(errs, check(annotation.CategorySituation, f.situation))
	}
	if fs.Changed("notes") {
		l.Notes = f.notes
	}
	if err := errors.Join(errs...); err != nil {
		return annotation.Labels{}, err
	}
	return l.Normalize(), nil
}
