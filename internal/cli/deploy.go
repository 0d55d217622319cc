package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gersonkurz/wax/internal/project"
)

// DeployCommand handles the deploy command
type DeployCommand struct {
	app *app
}

// NewDeployCommand creates a new deploy command
func NewDeployCommand(a *app) *cobra.Command {
	cmd := &DeployCommand{app: a}

	cobraCmd := &cobra.Command{
		Use:   "deploy [NAME...]",
		Short: "Choose the projects whose build output the installer deploys",
		Long: `Adds the named projects to the deployed projects and references them from the
installer project. Without arguments the candidates of the solution are listed.`,
		RunE: cmd.Run,
	}

	cobraCmd.Flags().StringSlice("remove", nil, "projects to stop deploying")
	cobraCmd.Flags().Bool("clear", false, "stop deploying all projects before adding NAME...")
	cobraCmd.Flags().Bool("symbols", false, "deploy .pdb files (use --symbols=false to stop)")

	return cobraCmd
}

// Run executes the deploy command
func (c *DeployCommand) Run(cmd *cobra.Command, args []string) error {
	remove, _ := cmd.Flags().GetStringSlice("remove")
	clearAll, _ := cmd.Flags().GetBool("clear")
	symbols, _ := cmd.Flags().GetBool("symbols")
	symbolsChanged := cmd.Flags().Changed("symbols")

	s, err := c.app.open()
	if err != nil {
		return err
	}
	p := s.project

	current, err := p.DeployedProjects()
	if err != nil {
		return err
	}

	if len(args) == 0 && len(remove) == 0 && !clearAll && !symbolsChanged {
		return c.list(cmd, s, current)
	}

	var deployed []project.Project
	if !clearAll {
		deployed = current
	}

	for _, name := range remove {
		target, err := c.find(s, name)
		if err != nil {
			return err
		}
		deployed = without(deployed, target)
	}
	for _, name := range args {
		target, err := c.find(s, name)
		if err != nil {
			return err
		}
		deployed = append(deployed, target)
	}

	if err := p.SetDeployedProjects(deployed); err != nil {
		return err
	}
	if symbolsChanged {
		if err := p.SetDeploySymbols(symbols); err != nil {
			return err
		}
	}

	result, err := p.DeployedProjects()
	if err != nil {
		return err
	}
	printf(cmd, "%s %s projects\n", Bold("Deploying"), Number(len(result)))
	for _, proj := range result {
		printf(cmd, "  %s\n", Filename(proj.UniqueName()))
	}
	return s.save(cmd)
}

func (c *DeployCommand) list(cmd *cobra.Command, s *session, current []project.Project) error {
	all, err := s.solution.Projects()
	if err != nil {
		return err
	}
	owner := s.project.Owner()
	for _, proj := range all {
		if isWixProject(proj) || strings.EqualFold(proj.UniqueName(), owner.UniqueName()) {
			continue
		}
		mark := " "
		if contains(current, proj) {
			mark = Success("*")
		}
		printf(cmd, "%s %s\n", mark, Filename(proj.UniqueName()))
	}
	return nil
}

func (c *DeployCommand) find(s *session, name string) (project.Project, error) {
	target := s.solution.Find(name)
	if target == nil {
		return nil, fmt.Errorf("project %s not found in the solution", name)
	}
	if strings.EqualFold(target.UniqueName(), s.project.Owner().UniqueName()) {
		return nil, fmt.Errorf("project %s cannot deploy itself", name)
	}
	return target, nil
}

func isWixProject(p project.Project) bool {
	return strings.EqualFold(filepath.Ext(p.FullName()), ".wixproj")
}

func contains(projects []project.Project, p project.Project) bool {
	for _, candidate := range projects {
		if strings.EqualFold(candidate.UniqueName(), p.UniqueName()) {
			return true
		}
	}
	return false
}

func without(projects []project.Project, p project.Project) []project.Project {
	result := make([]project.Project, 0, len(projects))
	for _, candidate := range projects {
		if !strings.EqualFold(candidate.UniqueName(), p.UniqueName()) {
			result = append(result, candidate)
		}
	}
	return result
}
