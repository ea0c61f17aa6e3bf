package cmd

import (
	"fmt"

	"github.com/douhashi/oyakata/internal/version"
	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "バージョン情報を表示",
		Long:  `oyakataのバージョン、コミットハッシュ、ビルド日時を表示します。`,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), version.Get().String())
			return nil
		},
	}
	return cmd
}
