package cli

import (
	"regexp"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var slashFlag = regexp.MustCompile(`^/([A-Za-z][A-Za-z-]*)(?::(.*))?$`)

// RewriteArgs converts /FLAG to --flag and /FLAG:value to --flag=value when
// flag is a long flag of root or one of its subcommands. Anything else,
// including paths like /opt, is passed through.
func RewriteArgs(root *cobra.Command, args []string) []string {
	known := knownFlags(root)

	result := make([]string, 0, len(args))
	for _, arg := range args {
		m := slashFlag.FindStringSubmatch(arg)
		if m == nil || !known[strings.ToLower(m[1])] {
			result = append(result, arg)
			continue
		}
		flag := "--" + strings.ToLower(m[1])
		if strings.Contains(arg, ":") {
			flag += "=" + m[2]
		}
		result = append(result, flag)
	}
	return result
}

func knownFlags(root *cobra.Command) map[string]bool {
	// cobra adds these on execution
	known := map[string]bool{"help": true, "version": true}

	var visit func(cmd *cobra.Command)
	visit = func(cmd *cobra.Command) {
		add := func(f *pflag.Flag) { known[f.Name] = true }
		cmd.Flags().VisitAll(add)
		cmd.PersistentFlags().VisitAll(add)
		for _, sub := range cmd.Commands() {
			visit(sub)
		}
	}
	visit(root)
	return known
}
