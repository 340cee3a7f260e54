package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/codedrill/internal/request"
	"github.com/abhisek/codedrill/internal/screens/practice"
)

var practiceCmd = &cobra.Command{
	Use:   "practice",
	Short: "Start an interactive practice session",
	Long: `Start an interactive practice session.

When --topic and --language are both given the form is submitted right away.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		params, err := paramsFromFlags(cmd)
		if err != nil {
			return err
		}
		return runApp(cmd, practice.Options{
			Initial:    params,
			AutoSubmit: params.Topic != "" && params.Language != "",
		})
	},
}

// paramsFromFlags reads --topic, --language and --difficulty.
func paramsFromFlags(cmd *cobra.Command) (request.Params, error) {
	topic, _ := cmd.Flags().GetString("topic")
	language, _ := cmd.Flags().GetString("language")
	diff, _ := cmd.Flags().GetString("difficulty")

	d, err := request.ParseDifficulty(diff)
	if err != nil {
		return request.Params{}, err
	}
	return request.Params{Topic: topic, Language: language, Difficulty: d}, nil
}

func addParamFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("topic", "t", "", "Topic to practice, e.g. \"binary search\"")
	cmd.Flags().StringP("language", "l", "", "Programming language, e.g. go")
	cmd.Flags().StringP("difficulty", "d", string(request.Beginner), "beginner, intermediate or advanced")
}

func init() {
	addParamFlags(practiceCmd)
}
