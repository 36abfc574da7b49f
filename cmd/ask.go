package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"coursefaq/controllers"
	"coursefaq/models"
)

func newAskCommand(opts *rootOptions) *cobra.Command {
	var course string
	cmd := &cobra.Command{
		Use:     "ask [question]",
		Short:   "Ask a single question from the terminal",
		Example: `coursefaq ask --course mlops-zoomcamp "How do I register?"`,
		RunE: func(c *cobra.Command, args []string) error {
			question := strings.TrimSpace(strings.Join(args, " "))
			if question == "" {
				fmt.Fprintln(c.OutOrStdout(), controllers.EmptyQuestionMessage)
				return nil
			}
			selected, err := models.ParseCourse(course)
			if err != nil {
				return err
			}

			cfg, logger, err := opts.load()
			if err != nil {
				return err
			}
			defer logger.Sync()

			qa, err := pipelineProvider(cfg, logger)
			if err != nil {
				return err
			}
			answer, err := qa.AnswerQuestion(c.Context(), question, selected)
			if err != nil {
				return err
			}

			fmt.Fprintln(c.OutOrStdout(), "Answer:")
			fmt.Fprintln(c.OutOrStdout(), answer)
			return nil
		},
	}
	cmd.Flags().StringVar(&course, "course", models.DefaultCourse.String(), "course id, see `coursefaq courses`")
	return cmd
}

func newCoursesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "courses",
		Short: "List the selectable courses",
		Args:  cobra.NoArgs,
		Run: func(c *cobra.Command, args []string) {
			for _, opt := range models.Courses() {
				fmt.Fprintf(c.OutOrStdout(), "%s\t%s\n", opt.ID, opt.Label)
			}
		},
	}
}
