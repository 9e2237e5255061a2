package main

import (
	"net/http"

	"github.com/spf13/cobra"
)

var (
	backupStatusCmd = &cobra.Command{
		Use:   "status",
		Short: "tell whether the backup of a mnemonic has been verified",
		RunE:  backupStatus,
	}
	backupListCmd = &cobra.Command{
		Use:   "list",
		Short: "list all known backups",
		RunE:  backupList,
	}
	backupCmd = &cobra.Command{
		Use:   "backup",
		Short: "get info about verified backups",
		Long: "this command lets you check the verification status of your " +
			"backups. Only fingerprints are stored, never the words",
	}
)

func init() {
	backupStatusCmd.Flags().StringVar(
		&mnemonic, "mnemonic", "", "space separated word list to check",
	)
	backupStatusCmd.Flags().StringVar(
		&mnemonicFile, "mnemonic-file", "", "path of the file containing the mnemonic",
	)
	backupCmd.AddCommand(backupStatusCmd, backupListCmd)
}

func backupStatus(cmd *cobra.Command, args []string) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	m, err := readMnemonic(mnemonic, mnemonicFile)
	if err != nil {
		return err
	}

	reply := backupStatusReply{}
	if err := client.call(
		http.MethodPost, "/v1/backups/status", mnemonicRequest{m}, &reply,
	); err != nil {
		printErr(err)
		return nil
	}

	printJSON(reply)
	return nil
}

func backupList(cmd *cobra.Command, args []string) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	reply := listBackupsReply{}
	if err := client.call(http.MethodGet, "/v1/backups", nil, &reply); err != nil {
		printErr(err)
		return nil
	}

	printJSON(reply)
	return nil
}
