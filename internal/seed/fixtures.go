// Package seed loads tenancy, survey and historical happiness fixtures from YAML.
package seed

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/bloom-backend/internal/domain/happiness"
	"github.com/yungbote/bloom-backend/internal/domain/survey"
)

type Fixtures struct {
	Companies []CompanyFixture `yaml:"companies"`
}

type CompanyFixture struct {
	Name    string           `yaml:"name"`
	Slug    string           `yaml:"slug"`
	Teams   []string         `yaml:"teams"`
	Users   []UserFixture    `yaml:"users"`
	Surveys []SurveyFixture  `yaml:"surveys"`
	History []HistoryFixture `yaml:"history"`
}

type UserFixture struct {
	Email     string     `yaml:"email"`
	FirstName string     `yaml:"first_name"`
	LastName  string     `yaml:"last_name"`
	Role      string     `yaml:"role"`
	Teams     []string   `yaml:"teams"`
	JoinedAt  *time.Time `yaml:"joined_at"`
}

type SurveyFixture struct {
	Title       string            `yaml:"title"`
	Description string            `yaml:"description"`
	Global      bool              `yaml:"global"`
	Status      string            `yaml:"status"`
	Teams       []string          `yaml:"teams"`
	Questions   []QuestionFixture `yaml:"questions"`
}

type QuestionFixture struct {
	Kind    string   `yaml:"kind"`
	Prompt  string   `yaml:"prompt"`
	Options []string `yaml:"options"`
}

// HistoryFixture backfills anonymous scores for a team, WeeksAgo weeks before the current week.
type HistoryFixture struct {
	Team     string `yaml:"team"`
	WeeksAgo int    `yaml:"weeks_ago"`
	Scores   []int  `yaml:"scores"`
}

func LoadFile(path string) (*Fixtures, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixtures: %w", err)
	}
	return Load(bytes.NewReader(raw))
}

// Load decodes fixtures strictly: unknown keys are an error.
func Load(r io.Reader) (*Fixtures, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var fx Fixtures
	if err := dec.Decode(&fx); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode fixtures: %w", err)
	}
	if err := fx.Validate(); err != nil {
		return nil, err
	}
	return &fx, nil
}

func (fx *Fixtures) Validate() error {
	slugs := map[string]bool{}
	for i, c := range fx.Companies {
		if strings.TrimSpace(c.Name) == "" || strings.TrimSpace(c.Slug) == "" {
			return fmt.Errorf("companies[%d]: name and slug are required", i)
		}
		if slugs[c.Slug] {
			return fmt.Errorf("companies[%d]: duplicate slug %q", i, c.Slug)
		}
		slugs[c.Slug] = true

		teams := map[string]bool{}
		for _, t := range c.Teams {
			teams[t] = true
		}
		known := func(where string, names []string) error {
			for _, n := range names {
				if !teams[n] {
					return fmt.Errorf("%s: %s: unknown team %q", c.Slug, where, n)
				}
			}
			return nil
		}
		for _, u := range c.Users {
			if strings.TrimSpace(u.Email) == "" {
				return fmt.Errorf("%s: user email is required", c.Slug)
			}
			if err := known(u.Email, u.Teams); err != nil {
				return err
			}
		}
		for _, s := range c.Surveys {
			if err := known(s.Title, s.Teams); err != nil {
				return err
			}
			switch s.Status {
			case "", survey.StatusDraft, survey.StatusActive, survey.StatusClosed:
			default:
				return fmt.Errorf("%s: survey %q: unknown status %q", c.Slug, s.Title, s.Status)
			}
			for _, q := range s.Questions {
				switch q.Kind {
				case survey.QuestionRating, survey.QuestionText, survey.QuestionChoice:
				default:
					return fmt.Errorf("%s: survey %q: unknown question kind %q", c.Slug, s.Title, q.Kind)
				}
			}
		}
		for _, h := range c.History {
			if err := known("history", []string{h.Team}); err != nil {
				return err
			}
			if h.WeeksAgo < 0 {
				return fmt.Errorf("%s: history for %q: weeks_ago must not be negative", c.Slug, h.Team)
			}
			for _, s := range h.Scores {
				if s < happiness.MinStoredScore || s > happiness.MaxStoredScore {
					return fmt.Errorf("%s: history for %q: score %d outside %d..%d", c.Slug, h.Team, s, happiness.MinStoredScore, happiness.MaxStoredScore)
				}
			}
		}
	}
	return nil
}
