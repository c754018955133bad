package main

import (
	"io"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/warp/pay-structure/factory"
	"github.com/warp/pay-structure/grading"
	"github.com/warp/pay-structure/point"
)

func newTemplatesCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "templates",
		Short: "List the preset organisations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.validateFormat(formatJSON, formatTable); err != nil {
				return err
			}
			templates := factory.Templates()
			return withOutput(cmd, o, func(w io.Writer) error {
				if o.format == formatJSON {
					return writeJSON(w, templates)
				}
				t := newTable(w, "ID", "Name", "Method", "Jobs", "Description")
				for _, tpl := range templates {
					t.Append([]string{tpl.ID, tpl.Name, string(tpl.Method), strconv.Itoa(len(tpl.Jobs)), tpl.Description})
				}
				t.Render()
				return nil
			})
		},
	}
}

type previewOutput struct {
	Method grading.Method       `json:"method"`
	Param  int                  `json:"param"`
	Rows   []grading.PreviewRow `json:"rows"`
}

func newPreviewCmd(o *options) *cobra.Command {
	var param int
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Show how jobs would be grouped into grades",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.validateFormat(formatJSON, formatTable); err != nil {
				return err
			}
			log := o.logger()
			defer log.Sync()

			s, err := loadSession(o, log)
			if err != nil {
				return err
			}
			p, err := resolveParam(s, param)
			if err != nil {
				return err
			}
			rows, err := s.Preview(p)
			if err != nil {
				return err
			}
			return withOutput(cmd, o, func(w io.Writer) error {
				if o.format == formatJSON {
					return writeJSON(w, previewOutput{Method: s.Method, Param: p, Rows: rows})
				}
				previewTable(w, rows)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&param, "param", 0, "grade count (ranking) or score interval (point); 0 uses the suggestion")
	return cmd
}

type generateOutput struct {
	Method   grading.Method    `json:"method"`
	Param    int               `json:"param"`
	BaseWage int64             `json:"base_wage"`
	Grades   []grading.Grade   `json:"grades"`
	Warnings []grading.Warning `json:"warnings"`
}

func newGenerateCmd(o *options) *cobra.Command {
	var param int
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Build a seeded grade structure",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.validateFormat(formatJSON, formatTable, formatXLSX); err != nil {
				return err
			}
			log := o.logger()
			defer log.Sync()

			s, err := loadSession(o, log)
			if err != nil {
				return err
			}
			p, err := resolveParam(s, param)
			if err != nil {
				return err
			}
			grades, err := s.Generate(p)
			if err != nil {
				return err
			}
			warnings := s.Diagnostics()
			if warnings == nil {
				warnings = []grading.Warning{}
			}

			switch o.format {
			case formatXLSX:
				return writeXLSX(cmd, o, s)
			case formatTable:
				return withOutput(cmd, o, func(w io.Writer) error {
					gradesTable(w, grades, warnings)
					return nil
				})
			}
			return withOutput(cmd, o, func(w io.Writer) error {
				return writeJSON(w, generateOutput{
					Method:   s.Method,
					Param:    p,
					BaseWage: s.Config.BaseWage,
					Grades:   grades,
					Warnings: warnings,
				})
			})
		},
	}
	cmd.Flags().IntVar(&param, "param", 0, "grade count (ranking) or score interval (point); 0 uses the suggestion")
	return cmd
}

type scoreOutput struct {
	Score     int      `json:"score"`
	Unmatched []string `json:"unmatched,omitempty"`
}

func newScoreCmd(o *options) *cobra.Command {
	var selections map[string]int
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score one set of factor selections",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.validateFormat(formatJSON, formatTable); err != nil {
				return err
			}
			m := point.DefaultFactors()
			if o.factorsFile != "" {
				var err error
				if m, err = factory.NewFactorFactory().LoadFile(o.factorsFile); err != nil {
					return err
				}
			}

			out := scoreOutput{
				Score:     point.Score(selections, m),
				Unmatched: point.Unmatched(selections, m),
			}
			return withOutput(cmd, o, func(w io.Writer) error {
				if o.format == formatJSON {
					return writeJSON(w, out)
				}
				t := newTable(w, "Factor", "Level", "Option", "Points")
				for _, key := range m.Keys() {
					level, ok := selections[key]
					if !ok {
						continue
					}
					def := m.Factors[key]
					opt, _ := def.Option(level)
					t.Append([]string{def.Label, strconv.Itoa(level), opt.Label, strconv.Itoa(opt.Score)})
				}
				t.SetFooter([]string{"", "", "Total", strconv.Itoa(out.Score)})
				t.Render()
				return nil
			})
		},
	}
	cmd.Flags().StringToIntVar(&selections, "select", nil, "factor selections, e.g. education=3,experience=2")
	return cmd
}
