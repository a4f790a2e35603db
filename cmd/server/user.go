package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tictracker/internal/db"
)

var createUserCmd = &cobra.Command{
	Use:   "create-user <username> <password>",
	Short: "建立或重設家長登入帳號",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, logger, err := bootstrap()
		if logger != nil {
			defer logger.Sync()
		}
		if err != nil {
			return err
		}
		if err := db.SetPassword(db.DB, args[0], args[1]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "帳號 %s 已更新\n", args[0])
		return nil
	},
}
