package cmd

import (
	"fmt"
	"os"

	"github.com/marketerz/marketerz/pkg/prompts"
	"github.com/spf13/cobra"
)

// settingsCmd represents the settings command
var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change the generation settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		return settingsShowCmd.RunE(cmd, args)
	},
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print temperature and selected categories",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer a.close()

		a.ctrl.Start("")
		printSettings(os.Stdout, a.ctrl.State().Settings)
		return nil
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Change the temperature and/or the selected categories",
	Example: `  marketerz settings set --temperature 0.4
  marketerz settings set --categories "strategy,creative-copy,image-prompt"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer a.close()

		a.ctrl.Start("")
		s := a.ctrl.State().Settings

		if cmd.Flags().Changed("temperature") {
			s.Temperature, _ = cmd.Flags().GetFloat64("temperature")
		}
		if cmd.Flags().Changed("categories") {
			csv, _ := cmd.Flags().GetString("categories")
			cats, err := prompts.ParseCategories(csv)
			if err != nil {
				return err
			}
			s.SelectedCategories = cats
		}

		if err := a.ctrl.UpdateSettings(s); err != nil {
			return err
		}
		printSettings(os.Stdout, a.ctrl.State().Settings)
		return nil
	},
}

var settingsToggleCmd = &cobra.Command{
	Use:   "toggle <category>",
	Short: "Select or deselect one category",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		category, err := prompts.ParseCategory(args[0])
		if err != nil {
			return err
		}

		a, err := openApp(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer a.close()

		a.ctrl.Start("")
		if err := a.ctrl.ToggleCategory(category); err != nil {
			return err
		}
		printSettings(os.Stdout, a.ctrl.State().Settings)
		return nil
	},
}

// examplesCmd represents the examples command
var examplesCmd = &cobra.Command{
	Use:   "examples",
	Short: "List the built-in example ideas",
	Run: func(cmd *cobra.Command, args []string) {
		printExamples(os.Stdout)
	},
}

// templatesCmd represents the templates command
var templatesCmd = &cobra.Command{
	Use:   "templates [index|title]",
	Short: "List prompt templates, or print one",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			t, err := findTemplate(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("%s (%s)\n%s\n\n%s\n", t.Title, t.Category, t.Description, t.Template)
			return nil
		}

		var filter prompts.TemplateFilter
		filter.Query, _ = cmd.Flags().GetString("search")
		if c, _ := cmd.Flags().GetString("category"); c != "" {
			category, err := prompts.ParseCategory(c)
			if err != nil {
				return err
			}
			filter.Category = category
		}
		printTemplates(os.Stdout, prompts.FilterTemplates(prompts.Templates(), filter))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(settingsCmd)
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsToggleCmd)
	rootCmd.AddCommand(examplesCmd)
	rootCmd.AddCommand(templatesCmd)

	settingsSetCmd.Flags().Float64("temperature", prompts.DefaultTemperature, "Creativity between 0.0 and 1.0")
	settingsSetCmd.Flags().String("categories", "", "Comma separated categories to generate")
	templatesCmd.Flags().StringP("category", "c", "", "Only templates of this category")
	templatesCmd.Flags().StringP("search", "s", "", "Only templates whose title or description contains this text")
}
