package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"policymatcher/internal/nickname"
)

var (
	nicknameSeed  uint64
	nicknameCount int
)

var nicknameCmd = &cobra.Command{
	Use:   "nickname",
	Short: "Print generated nicknames",
	Long: `Prints nicknames the way registration assigns them. The same --seed
always prints the same list; without it the clock seeds the generator.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if nicknameCount < 1 {
			return errors.New("--count must be at least 1")
		}

		gen := nickname.NewFromClock()
		if cmd.Flags().Changed("seed") {
			gen = nickname.New(nicknameSeed)
		}

		for i := 0; i < nicknameCount; i++ {
			fmt.Fprintln(cmd.OutOrStdout(), gen.Next())
		}
		return nil
	},
}

func init() {
	nicknameCmd.Flags().Uint64Var(&nicknameSeed, "seed", 0, "seed for a reproducible list")
	nicknameCmd.Flags().IntVarP(&nicknameCount, "count", "n", 5, "how many nicknames to print")
}
