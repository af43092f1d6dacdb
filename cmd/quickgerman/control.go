package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/1broseidon/quickgerman/internal/bounds"
	"github.com/1broseidon/quickgerman/internal/ipc"
	"github.com/1broseidon/quickgerman/internal/translate"
)

// simpleCommand builds a no-argument command that sends one IPC request.
func simpleCommand(use, short string, send func(*ipc.Client) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := send(newClient()); err != nil {
				return daemonNotRunning(err)
			}
			return nil
		},
	}
}

var modeCmd = &cobra.Command{
	Use:       "mode <translation|settings>",
	Short:     "Switch the overlay between translation and settings mode",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"translation", "settings"},
	RunE:      runMode,
}

var swapCmd = &cobra.Command{
	Use:   "swap",
	Short: "Swap the translation direction",
	Args:  cobra.NoArgs,
	RunE:  runSwap,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show daemon status",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(
		simpleCommand("show", "Slide the overlay into view", (*ipc.Client).Show),
		simpleCommand("hide", "Slide the overlay out of view", (*ipc.Client).Hide),
		simpleCommand("toggle", "Show the overlay if hidden, hide it otherwise", (*ipc.Client).Toggle),
		simpleCommand("capture", "Copy the current selection and translate it", (*ipc.Client).Capture),
		simpleCommand("reload", "Reload the daemon configuration", (*ipc.Client).Reload),
		simpleCommand("quit", "Stop the daemon", (*ipc.Client).Quit),
		modeCmd,
		swapCmd,
		statusCmd,
	)
	statusCmd.Flags().Bool("json", false, "Print status as JSON")
}

func runMode(cmd *cobra.Command, args []string) error {
	mode, err := bounds.ParseMode(args[0])
	if err != nil {
		return err
	}
	if err := newClient().SetMode(mode); err != nil {
		return daemonNotRunning(err)
	}
	return nil
}

func runSwap(cmd *cobra.Command, args []string) error {
	dir, err := newClient().Swap()
	if err != nil {
		return daemonNotRunning(err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), dir.Label())
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	asJSON, _ := cmd.Flags().GetBool("json")
	st, err := newClient().GetStatus()
	if err != nil {
		if asJSON {
			return printJSON(cmd, ipc.StatusData{DaemonRunning: false})
		}
		fmt.Fprintln(cmd.OutOrStdout(), "daemon: not running")
		return nil
	}
	st.DaemonRunning = true
	if asJSON {
		return printJSON(cmd, st)
	}

	out := cmd.OutOrStdout()
	visibility := "hidden"
	if st.Visible {
		visibility = "visible"
	}
	fmt.Fprintln(out, "daemon: running")
	fmt.Fprintf(out, "overlay: %s (%s mode)\n", visibility, st.Mode)
	fmt.Fprintf(out, "direction: %s\n", translate.Direction(st.Direction).Label())
	fmt.Fprintf(out, "provider: %s\n", st.Provider)
	fmt.Fprintf(out, "uptime: %s\n", time.Duration(st.UptimeSeconds)*time.Second)
	if st.Input != "" {
		fmt.Fprintf(out, "input: %s\n", st.Input)
	}
	if st.Loading {
		fmt.Fprintln(out, "output: (translating)")
	} else if st.Output != "" {
		fmt.Fprintf(out, "output: %s\n", st.Output)
	}
	return nil
}
