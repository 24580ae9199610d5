package cmd

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List, inspect, restore or clear past generation runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		return historyListCmd.RunE(cmd, args)
	},
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List past runs, most recent first",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer a.close()

		a.ctrl.Start("")
		st := a.ctrl.State()
		printHistory(os.Stdout, st.History, st.ActiveHistoryID)
		return nil
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print the idea and prompts of one run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")

		a, err := openApp(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer a.close()

		item, ok := a.history.Find(args[0])
		if !ok {
			return fmt.Errorf("no history item with id %s", args[0])
		}
		if asJSON {
			return printJSON(os.Stdout, item)
		}
		fmt.Printf("Idea: %s\nWhen: %s\n\n", item.Idea, item.Timestamp.Local().Format("2006-01-02 15:04:05"))
		printPrompts(os.Stdout, item.Prompts, false)
		return nil
	},
}

var historySelectCmd = &cobra.Command{
	Use:   "select <id>",
	Short: "Restore a past run as the current session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer a.close()

		a.ctrl.Start("")
		item, ok := a.ctrl.SelectHistoryItem(args[0])
		if !ok {
			return fmt.Errorf("no history item with id %s", args[0])
		}
		fmt.Printf("Restored %q with %d prompts.\n", item.Idea, len(item.Prompts))
		return nil
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every recorded run",
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		if !yes && !promptConfirmer(bufio.NewReader(os.Stdin), os.Stdout)("Clear the whole generation history?") {
			fmt.Println("Aborted.")
			return nil
		}

		a, err := openApp(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer a.close()

		a.ctrl.Start("")
		a.ctrl.ClearHistory()
		fmt.Println("History cleared.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historySelectCmd)
	historyCmd.AddCommand(historyClearCmd)

	historyShowCmd.Flags().Bool("json", false, "Print the run as JSON")
	historyClearCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
}
