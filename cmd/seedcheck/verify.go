package main

import (
	"bufio"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "verify a backup interactively",
	Long: "this command walks you through the verification of a backup: for " +
		"every group of words pick the missing one among those available. " +
		"Type the number of a word to place it, 'u' to take back the last " +
		"placed word, 'r' to start over, 'q' to give up",
	RunE: verify,
}

func init() {
	verifyCmd.Flags().StringVar(
		&mnemonic, "mnemonic", "", "space separated word list to verify",
	)
	verifyCmd.Flags().StringVar(
		&mnemonicFile, "mnemonic-file", "", "path of the file containing the mnemonic",
	)
	verifyCmd.Flags().BoolVar(
		&useStored, "stored", false, "verify the last mnemonic generated by the daemon",
	)
}

func verify(cmd *cobra.Command, args []string) error {
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

	session := sessionReply{}
	if err := client.call(http.MethodPost, "/v1/sessions", req, &session); err != nil {
		printErr(err)
		return nil
	}
	sessionPath := fmt.Sprintf("/v1/sessions/%s", session.ID)

	reader := bufio.NewReader(os.Stdin)
	lastGroup := -1
	for session.Step != "complete" {
		group := session.currentGroup()
		printGroup(session, group)

		fmt.Print("> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return err
		}
		input := strings.TrimSpace(line)

		next := sessionReply{}
		switch input {
		case "q":
			if err := client.call(http.MethodDelete, sessionPath, nil, nil); err != nil {
				printErr(err)
			}
			fmt.Println("verification abandoned")
			return nil
		case "r":
			err = client.call(http.MethodPost, sessionPath+"/reset", nil, &next)
			lastGroup = -1
		case "u":
			if lastGroup < 0 {
				fmt.Println("nothing to take back")
				continue
			}
			err = client.call(
				http.MethodPost, sessionPath+"/unplace",
				unplaceWordRequest{lastGroup}, &next,
			)
			lastGroup--
		default:
			index, convErr := strconv.Atoi(input)
			if convErr != nil || index < 1 || index > len(session.Chips) {
				fmt.Printf("type a number between 1 and %d\n", len(session.Chips))
				continue
			}
			c := session.Chips[index-1]
			err = client.call(
				http.MethodPost, sessionPath+"/place",
				placeWordRequest{Position: c.Position, Word: c.Word, Group: group},
				&next,
			)
			lastGroup = group
		}
		if err != nil {
			printErr(err)
			continue
		}
		session = next
	}

	if session.Outcome == "success" {
		fmt.Println("well done, your backup is verified")
		return nil
	}

	fmt.Printf(
		"some words are misplaced. Check your backup and start over with "+
			"`seedcheck session reset --id %s`\n", session.ID,
	)
	return nil
}

func printGroup(session sessionReply, index int) {
	fmt.Printf("\ngroup %d/%d\n", index+1, len(session.Groups))
	for _, s := range session.Groups[index].Slots {
		word := s.Word
		if s.Kind == "empty" {
			word = "______"
		}
		fmt.Printf("  %2d. %s\n", s.Position, word)
	}

	words := make([]string, 0, len(session.Chips))
	for i, c := range session.Chips {
		words = append(words, fmt.Sprintf("[%d] %s", i+1, c.Word))
	}
	fmt.Printf("available words: %s\n", strings.Join(words, "  "))
}
