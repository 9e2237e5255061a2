package main

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
)

var (
	mnemonic     string
	mnemonicFile string
	useStored    bool
	sessionID    string
	chipPosition int
	chipWord     string
	groupIndex   int

	sessionStartCmd = &cobra.Command{
		Use:   "start",
		Short: "start a new validation session",
		Long: "this command lets you start verifying the backup of the given " +
			"mnemonic, or of the last generated one if --stored is set",
		RunE: sessionStart,
	}
	sessionShowCmd = &cobra.Command{
		Use:   "show",
		Short: "show a validation session",
		RunE:  sessionShow,
	}
	sessionPlaceCmd = &cobra.Command{
		Use:   "place",
		Short: "place a word into the blank of a group",
		Long: "this command lets you fill the blank of the given group with one " +
			"of the available words, identified by its position",
		RunE: sessionPlace,
	}
	sessionUnplaceCmd = &cobra.Command{
		Use:   "unplace",
		Short: "take back the word placed into a group",
		RunE:  sessionUnplace,
	}
	sessionResetCmd = &cobra.Command{
		Use:   "reset",
		Short: "start the session over with new blanks",
		RunE:  sessionReset,
	}
	sessionAbandonCmd = &cobra.Command{
		Use:   "abandon",
		Short: "drop a validation session",
		RunE:  sessionAbandon,
	}
	sessionCmd = &cobra.Command{
		Use:   "session",
		Short: "interact with validation sessions",
		Long: "this command lets you verify a backup step by step by placing " +
			"the missing words of every group",
	}
)

func init() {
	sessionStartCmd.Flags().StringVar(
		&mnemonic, "mnemonic", "", "space separated word list to verify",
	)
	sessionStartCmd.Flags().StringVar(
		&mnemonicFile, "mnemonic-file", "", "path of the file containing the mnemonic",
	)
	sessionStartCmd.Flags().BoolVar(
		&useStored, "stored", false, "verify the last mnemonic generated by the daemon",
	)

	for _, cmd := range []*cobra.Command{
		sessionShowCmd, sessionPlaceCmd, sessionUnplaceCmd, sessionResetCmd,
		sessionAbandonCmd,
	} {
		cmd.Flags().StringVar(&sessionID, "id", "", "validation session id")
		cmd.MarkFlagRequired("id")
	}

	sessionPlaceCmd.Flags().IntVar(&chipPosition, "position", -1, "position of the word to place")
	sessionPlaceCmd.Flags().StringVar(&chipWord, "word", "", "word to place")
	sessionPlaceCmd.Flags().IntVar(&groupIndex, "group", 0, "index of the group")
	sessionPlaceCmd.MarkFlagRequired("position")
	sessionPlaceCmd.MarkFlagRequired("word")

	sessionUnplaceCmd.Flags().IntVar(&groupIndex, "group", 0, "index of the group")

	sessionCmd.AddCommand(
		sessionStartCmd, sessionShowCmd, sessionPlaceCmd, sessionUnplaceCmd,
		sessionResetCmd, sessionAbandonCmd,
	)
}

func sessionStart(cmd *cobra.Command, args []string) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	req := mnemonicRequest{}
	if !useStored {
		m, err := readMnemonic(mnemonic, mnemonicFile)
		if err != nil {
			return err
		}
		req.Mnemonic = m
	}

	reply := sessionReply{}
	if err := client.call(http.MethodPost, "/v1/sessions", req, &reply); err != nil {
		printErr(err)
		return nil
	}

	printJSON(reply)
	return nil
}

func sessionShow(cmd *cobra.Command, args []string) error {
	return sessionCall(http.MethodGet, "", nil)
}

func sessionPlace(cmd *cobra.Command, args []string) error {
	return sessionCall(http.MethodPost, "/place", placeWordRequest{
		Position: chipPosition,
		Word:     chipWord,
		Group:    groupIndex,
	})
}

func sessionUnplace(cmd *cobra.Command, args []string) error {
	return sessionCall(http.MethodPost, "/unplace", unplaceWordRequest{groupIndex})
}

func sessionReset(cmd *cobra.Command, args []string) error {
	return sessionCall(http.MethodPost, "/reset", nil)
}

func sessionAbandon(cmd *cobra.Command, args []string) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	path := fmt.Sprintf("/v1/sessions/%s", sessionID)
	if err := client.call(http.MethodDelete, path, nil, nil); err != nil {
		printErr(err)
		return nil
	}

	fmt.Printf("session %s has been abandoned\n", sessionID)
	return nil
}

func sessionCall(method, action string, body interface{}) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	path := fmt.Sprintf("/v1/sessions/%s%s", sessionID, action)
	reply := sessionReply{}
	if err := client.call(method, path, body, &reply); err != nil {
		printErr(err)
		return nil
	}

	printJSON(reply)
	return nil
}
