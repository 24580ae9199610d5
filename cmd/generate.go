package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// generateCmd represents the generate command
var generateCmd = &cobra.Command{
	Use:   "generate [idea]",
	Short: "Generate one prompt per selected category for an idea",
	Long: `Generate one prompt per selected category for an idea.

Without an idea argument the idea of the current session is used. --example and --template
replace the idea with a built-in example or template first. The run is recorded in history and
the session is saved.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		example, _ := cmd.Flags().GetString("example")
		template, _ := cmd.Flags().GetString("template")
		asJSON, _ := cmd.Flags().GetBool("json")
		raw, _ := cmd.Flags().GetBool("raw")

		a, err := openApp(cmd.Context(), true)
		if err != nil {
			return err
		}
		defer a.close()

		a.ctrl.Start("")

		switch {
		case example != "":
			ex, err := findExample(example)
			if err != nil {
				return err
			}
			a.ctrl.SelectExample(ex)
		case template != "":
			t, err := findTemplate(template)
			if err != nil {
				return err
			}
			a.ctrl.SelectTemplate(t)
		case len(args) > 0:
			a.ctrl.SetIdea(strings.Join(args, " "))
		}

		st := a.ctrl.State()
		if template != "" && len(args) == 0 {
			fmt.Fprintln(os.Stderr, "Using the template text as the idea; edit it with `marketerz session idea` for better results.")
		}
		fmt.Fprintf(os.Stderr, "Generating %d prompts...\n", len(st.Settings.SelectedCategories))

		ps, err := a.ctrl.Generate(cmd.Context())
		if err != nil {
			if msg := a.ctrl.State().Error; msg != "" {
				return errors.New(msg)
			}
			return err
		}

		if asJSON {
			return printJSON(os.Stdout, ps)
		}
		printPrompts(os.Stdout, ps, raw)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().StringP("example", "e", "", "Use a built-in example idea (index or title)")
	generateCmd.Flags().StringP("template", "t", "", "Use a built-in template as the idea (index or title)")
	generateCmd.Flags().Bool("json", false, "Print the prompts as JSON")
	generateCmd.Flags().Bool("raw", false, "Print only the prompt bodies")
}
