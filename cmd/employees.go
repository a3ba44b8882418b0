// Copyright (c) 2025 Empbridge
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"empbridge/cli/internal/bridge"
	"empbridge/cli/internal/bridge/model"
	"empbridge/cli/internal/employee"
)

var fetchJSON bool

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch all employees",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := invoke(cmd.Context(), model.MethodCall{Method: bridge.MethodFetchEmployees})
		if err != nil {
			return err
		}
		if out.Status != model.StatusSuccess {
			return renderOutcome(out)
		}

		payload, ok := out.Result.(string)
		if !ok {
			return fmt.Errorf("unexpected fetch result %T", out.Result)
		}
		if fetchJSON {
			fmt.Fprintln(cmd.OutOrStdout(), payload)
			return nil
		}
		records, err := employee.ParseRecords(payload)
		if err != nil {
			return err
		}
		return renderRecords(records)
	},
}

// employeeFlags binds one flag per employee field.
type employeeFlags struct {
	values map[string]*string
}

func newEmployeeFlags(c *cobra.Command) *employeeFlags {
	f := &employeeFlags{values: map[string]*string{}}
	for _, key := range employee.Keys {
		f.values[key] = c.Flags().String(flagName(key), "", key)
	}
	return f
}

// arguments returns the flags that were set, keyed by wire key. Unset fields are
// left out so the bridge reports them.
func (f *employeeFlags) arguments(c *cobra.Command) map[string]any {
	args := map[string]any{}
	for _, key := range employee.Keys {
		if c.Flags().Changed(flagName(key)) {
			args[key] = *f.values[key]
		}
	}
	return args
}

func flagName(key string) string {
	switch key {
	case employee.KeyEmployeeID:
		return "id"
	case employee.KeyFirstName:
		return "first-name"
	case employee.KeyLastName:
		return "last-name"
	case employee.KeyDepartmentID:
		return "department"
	case employee.KeySalary:
		return "salary"
	case employee.KeyHireDate:
		return "hire-date"
	default:
		return key
	}
}

var addCmd = &cobra.Command{
	Use:     "add",
	Short:   "Add an employee",
	Args:    cobra.NoArgs,
	Example: `  empbridge add --id E1 --first-name Ann --last-name Lee --department D1 --salary 50000 --hire-date 2024-01-01`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := invoke(cmd.Context(), model.MethodCall{Method: bridge.MethodAddEmployee, Arguments: addFlags.arguments(cmd)})
		if err != nil {
			return err
		}
		return renderOutcome(out)
	},
}

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update an employee by id",
	Long: `The update command rewrites every non-identifier field of the employee with the
given id. All fields are required.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := invoke(cmd.Context(), model.MethodCall{Method: bridge.MethodUpdateEmployee, Arguments: updateFlags.arguments(cmd)})
		if err != nil {
			return err
		}
		return renderOutcome(out)
	},
}

var callArgs string

// callCmd sends an arbitrary method with JSON arguments and prints the raw outcome.
var callCmd = &cobra.Command{
	Use:   "call <method>",
	Short: "Invoke a method on the employees channel",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		call := model.MethodCall{Method: args[0]}
		if callArgs != "" {
			var v any
			if err := json.Unmarshal([]byte(callArgs), &v); err != nil {
				return fmt.Errorf("--args is not valid JSON: %w", err)
			}
			call.Arguments = v
		}

		out, err := invoke(cmd.Context(), call)
		if err != nil {
			return err
		}

		b, err := json.MarshalIndent(outcomeJSON(out), "", "  ")
		if err != nil {
			return err
		}
		pterm.Println(string(b))
		if out.Status != model.StatusSuccess {
			return fmt.Errorf("call %s: %s", call.Method, out.Status)
		}
		return nil
	},
}

func outcomeJSON(out model.Outcome) map[string]any {
	m := map[string]any{"status": out.Status}
	switch out.Status {
	case model.StatusSuccess:
		m["result"] = out.Result
	case model.StatusError:
		m["code"] = out.Code
		m["message"] = out.Message
		if out.Details != nil {
			m["details"] = out.Details
		}
	}
	return m
}

var (
	addFlags    *employeeFlags
	updateFlags *employeeFlags
)

func init() {
	for _, c := range []*cobra.Command{fetchCmd, addCmd, updateCmd, callCmd} {
		addCallerFlags(c)
		rootCmd.AddCommand(c)
	}
	fetchCmd.Flags().BoolVar(&fetchJSON, "json", false, "Print the raw JSON payload")
	addFlags = newEmployeeFlags(addCmd)
	updateFlags = newEmployeeFlags(updateCmd)
	callCmd.Flags().StringVar(&callArgs, "args", "", "Arguments as a JSON object")
}
