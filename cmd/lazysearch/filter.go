package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rebeliceyang/lazysearch/internal/filter"
	"github.com/rebeliceyang/lazysearch/internal/models"
	"github.com/spf13/cobra"
)

// errInvalidExpression makes validate exit non-zero after printing its report
var errInvalidExpression = errors.New("expression is invalid")

func validateCmd(c *cli) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "validate <expression>",
		Short: "check an expression for structural problems and score its complexity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			expr := args[0]
			result := filter.Validate(expr)
			c.record(expr, "cli", result)

			out := cmd.OutOrStdout()
			if asJSON {
				if err := writeJSON(out, result); err != nil {
					return err
				}
			} else {
				printValidation(out, result)
			}
			if !result.IsValid {
				return errInvalidExpression
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	return cmd
}

func printValidation(w io.Writer, result models.ValidationResult) {
	if result.IsValid {
		fmt.Fprintf(w, "valid (complexity %d)\n", result.ComplexityScore)
	} else {
		fmt.Fprintf(w, "invalid (complexity %d)\n", result.ComplexityScore)
	}
	for _, issue := range result.Issues {
		fmt.Fprintf(w, "  issue: %s\n", issue)
	}
	for _, warning := range result.Warnings {
		fmt.Fprintf(w, "  warning: %s\n", warning)
	}
}

func optimizeCmd(_ *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "optimize <expression>",
		Short: "remove redundant grouping and duplicate conjuncts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), filter.Optimize(args[0]))
			return nil
		},
	}
}

func collectionCmd(_ *cli) *cobra.Command {
	var (
		field  string
		values []string
		fn     string
		op     string
	)
	cmd := &cobra.Command{
		Use:   "collection",
		Short: "build an any/all lambda over a collection field",
		Example: `  lazysearch collection --field tags --values premium,luxury
  lazysearch collection --field tags --values spa --func all --op contains`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			expr, err := filter.NewBuilder().BuildCollectionFilter(field, values,
				models.CollectionFunction(fn), models.Operator(op))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), expr)
			return nil
		},
	}
	cmd.Flags().StringVar(&field, "field", "", "collection field name")
	cmd.Flags().StringSliceVar(&values, "values", nil, "values to match, comma separated")
	cmd.Flags().StringVar(&fn, "func", string(models.CollectionAny), "lambda function: any or all")
	cmd.Flags().StringVar(&op, "op", string(models.OpEqual), "operator applied to each value")
	_ = cmd.MarkFlagRequired("field")
	_ = cmd.MarkFlagRequired("values")
	return cmd
}

func conditionCmd(_ *cli) *cobra.Command {
	var (
		field      string
		op         string
		value      string
		edmType    string
		collection string
	)
	cmd := &cobra.Command{
		Use:   "condition",
		Short: "render a single condition",
		Example: `  lazysearch condition --field rating --op ge --value 4 --type Edm.Double
  lazysearch condition --field tags --op eq --value premium --collection any`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			parsed, err := filter.ParseValue(edmType, value)
			if err != nil {
				return err
			}
			expr, err := filter.NewBuilder().RenderCondition(models.FilterCondition{
				Field:              field,
				Operator:           models.Operator(strings.ToLower(op)),
				Value:              parsed,
				CollectionFunction: models.CollectionFunction(collection),
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), expr)
			return nil
		},
	}
	cmd.Flags().StringVar(&field, "field", "", "field name")
	cmd.Flags().StringVar(&op, "op", string(models.OpEqual), "operator")
	cmd.Flags().StringVar(&value, "value", "", "value; null renders a null literal")
	cmd.Flags().StringVar(&edmType, "type", "Edm.String", "EDM type used to parse the value")
	cmd.Flags().StringVar(&collection, "collection", "", "wrap in any or all")
	_ = cmd.MarkFlagRequired("field")
	return cmd
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}
