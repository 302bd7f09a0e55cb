package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rainlang/rainlsp/config"
)

var rainconfigCommand = &cobra.Command{
	Use:   "rainconfig",
	Short: "Describe the rainconfig file",
}

var rainconfigInfoCommand = &cobra.Command{
	Use:   "info [field]",
	Short: "Print what a rainconfig is, or what one of its fields holds",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		info, err := rainconfigInfo(args)
		if err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout, info)
		return nil
	},
}

var rainconfigPrintAllCommand = &cobra.Command{
	Use:   "print-all",
	Short: "Print the names of all rainconfig fields",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(os.Stdout, rainconfigFieldNames())
	},
}

func init() {
	rainconfigCommand.AddCommand(rainconfigInfoCommand)
	rainconfigCommand.AddCommand(rainconfigPrintAllCommand)
	rootCommand.AddCommand(rainconfigCommand)
}

func rainconfigInfo(args []string) (string, error) {
	if len(args) == 0 {
		return config.Description, nil
	}
	return config.DescribeField(args[0])
}

func rainconfigFieldNames() string {
	names := make([]string, 0, len(config.Fields))
	for _, field := range config.Fields {
		names = append(names, "- "+field.Name)
	}
	return strings.Join(names, "\n")
}
