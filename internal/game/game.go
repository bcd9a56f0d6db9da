// Package game builds the configuration a Face Off game starts with.
package game

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// DefaultLives is the number of lives a player starts with when none is requested.
const DefaultLives = 5

// MaxLives bounds the magnitude of requested lives.
const MaxLives = math.MaxInt32

var (
	// ErrLivesNotNumber is returned when the requested lives is not a number.
	ErrLivesNotNumber = errors.New("Lives must be a number")
	// ErrLivesNotInteger is returned when the requested lives is a number with a fractional part.
	ErrLivesNotInteger = errors.New("lives must be a whole number")
	// ErrLivesOutOfRange is returned when the requested lives is a whole number beyond MaxLives.
	ErrLivesOutOfRange = errors.New("lives out of range")
	// ErrUnknownDifficulty is returned for a difficulty outside of Difficulties.
	ErrUnknownDifficulty = errors.New("unknown difficulty")
)

// Difficulty is the level of the puzzles of a game.
type Difficulty string

// Supported difficulties, from the easiest.
const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
	Expert Difficulty = "expert"
	Master Difficulty = "master"
)

// Difficulties lists the supported difficulties, from the easiest.
var Difficulties = []Difficulty{Easy, Medium, Hard, Expert, Master}

// ParseDifficulty returns the difficulty named s, case-insensitively.
func ParseDifficulty(s string) (Difficulty, error) {
	d := Difficulty(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Difficulties {
		if d == known {
			return d, nil
		}
	}
	return "", fmt.Errorf("%w %q, expected one of %s", ErrUnknownDifficulty, s, difficultyNames())
}

func difficultyNames() string {
	names := make([]string, 0, len(Difficulties))
	for _, d := range Difficulties {
		names = append(names, string(d))
	}
	return strings.Join(names, ", ")
}

// Config is the starting configuration of a game.
type Config struct {
	Difficulty Difficulty `json:"difficulty"`
	Lives      int        `json:"lives"`
}

type options struct {
	lives int
}

// Options represents an optional function to override Start default values.
type Options func(*options)

// WithLives overrides the number of lives, zero included.
func WithLives(n int) Options {
	return func(o *options) {
		o.lives = n
	}
}

// Start returns the configuration of a game at difficulty d.
func Start(d Difficulty, args ...Options) (Config, error) {
	d, err := ParseDifficulty(string(d))
	if err != nil {
		return Config{}, err
	}

	opts := options{lives: DefaultLives}
	for _, opt := range args {
		opt(&opts)
	}

	return Config{Difficulty: d, Lives: opts.lives}, nil
}

// LivesFromJSON returns the Start options for a raw JSON lives value.
// An empty value means the lives were not given and keeps the default.
// Any JSON number overrides it while any other value, null included, is rejected.
func LivesFromJSON(raw json.RawMessage) ([]Options, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, nil
	}

	if !json.Valid(raw) {
		return nil, ErrLivesNotNumber
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, ErrLivesNotNumber
	}
	n, ok := v.(json.Number)
	if !ok {
		return nil, ErrLivesNotNumber
	}

	i, err := strconv.ParseInt(n.String(), 10, 64)
	if err == nil {
		return livesOptions(i, n.String())
	}
	if errors.Is(err, strconv.ErrRange) {
		return nil, fmt.Errorf("%w: %s", ErrLivesOutOfRange, n)
	}

	// 1e1 is a valid JSON integer too.
	f, err := n.Float64()
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrLivesOutOfRange, n)
	}
	if f != math.Trunc(f) {
		return nil, fmt.Errorf("%w: %s", ErrLivesNotInteger, n)
	}
	if math.Abs(f) > MaxLives {
		return nil, fmt.Errorf("%w: %s", ErrLivesOutOfRange, n)
	}
	return []Options{WithLives(int(f))}, nil
}

func livesOptions(n int64, raw string) ([]Options, error) {
	if n > MaxLives || n < -MaxLives {
		return nil, fmt.Errorf("%w: %s", ErrLivesOutOfRange, raw)
	}
	return []Options{WithLives(int(n))}, nil
}

// ParseLives returns the Start options for a lives value given on the command line.
// An empty string keeps the default.
func ParseLives(s string) ([]Options, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if errors.Is(err, strconv.ErrRange) {
		return nil, fmt.Errorf("%w: %s", ErrLivesOutOfRange, s)
	}
	if err != nil {
		return nil, ErrLivesNotNumber
	}
	return livesOptions(n, s)
}

// StartFromJSON returns the configuration of a game from a JSON start request such as
// {"difficulty": "easy", "lives": 3}. Lives follow LivesFromJSON.
func StartFromJSON(data []byte) (Config, error) {
	var req struct {
		Difficulty Difficulty      `json:"difficulty"`
		Lives      json.RawMessage `json:"lives"`
	}
	if err := json.Unmarshal(data, &req); err != nil {
		return Config{}, fmt.Errorf("invalid start request: %v", err)
	}

	opts, err := LivesFromJSON(req.Lives)
	if err != nil {
		return Config{}, err
	}
	return Start(req.Difficulty, opts...)
}
