package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/warp/pay-structure/engine"
	"github.com/warp/pay-structure/factory"
	"github.com/warp/pay-structure/grading"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// jobsFile is the --jobs schema. JSON files parse as YAML.
//
//	method: ranking
//	jobs:
//	  - {title: Director, rank: 1}
//	  - {title: Analyst, rank: 2}
type jobsFile struct {
	Method string     `yaml:"method"`
	Jobs   []jobEntry `yaml:"jobs"`
}

type jobEntry struct {
	Title   string         `yaml:"title"`
	Note    string         `yaml:"note"`
	Rank    int            `yaml:"rank"`
	Factors map[string]int `yaml:"factors"`
}

// loadSession builds an in-memory session from the input flags.
func loadSession(o *options, log *zap.Logger) (*engine.Session, error) {
	cfg := engine.DefaultConfig()
	if o.baseWage != 0 {
		cfg.BaseWage = o.baseWage
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := engine.NewSession("gradectl", cfg, log)

	if o.factorsFile != "" {
		m, err := factory.NewFactorFactory().LoadFile(o.factorsFile)
		if err != nil {
			return nil, err
		}
		if err := s.UpdateFactors(m); err != nil {
			return nil, err
		}
	}

	switch {
	case o.template != "" && o.jobsFile != "":
		return nil, errors.New("--template and --jobs are mutually exclusive")
	case o.template != "":
		tpl, err := factory.LookupTemplate(o.template)
		if err != nil {
			return nil, err
		}
		s.LoadTemplate(tpl)
	case o.jobsFile != "":
		if err := addJobsFromFile(s, o.jobsFile); err != nil {
			return nil, err
		}
	default:
		return nil, errors.New("one of --template or --jobs is required")
	}

	if o.method != "" {
		if err := s.SetMethod(grading.Method(o.method)); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func addJobsFromFile(s *engine.Session, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read jobs file: %w", err)
	}
	var jf jobsFile
	if err := yaml.Unmarshal(data, &jf); err != nil {
		return fmt.Errorf("failed to parse jobs file: %w", err)
	}
	if jf.Method != "" {
		if err := s.SetMethod(grading.Method(jf.Method)); err != nil {
			return err
		}
	}
	for _, j := range jf.Jobs {
		s.AddJob(engine.JobInput{Title: j.Title, Note: j.Note, Rank: j.Rank, Factors: j.Factors})
	}
	return nil
}

// resolveParam returns param, or the suggested one when it is zero.
func resolveParam(s *engine.Session, param int) (int, error) {
	if param != 0 {
		return param, nil
	}
	suggestion, err := s.Suggest()
	if err != nil {
		return 0, err
	}
	return suggestion.Param, nil
}
