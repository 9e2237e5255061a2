package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/user"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/term"
)

var colorRed = string("\033[31m")

type client struct {
	baseURL string
	http    *http.Client
}

type errorReply struct {
	Error string `json:"error"`
}

func getClient() (*client, error) {
	state, err := getState()
	if err != nil {
		return nil, err
	}
	address, ok := state["rpcserver"]
	if !ok || len(address) <= 0 {
		return nil, fmt.Errorf("set rpcserver with `config set rpcserver`")
	}
	timeout, err := time.ParseDuration(state["timeout"])
	if err != nil {
		timeout, _ = time.ParseDuration(initialState["timeout"])
	}

	if !strings.HasPrefix(address, "http://") &&
		!strings.HasPrefix(address, "https://") {
		address = fmt.Sprintf("http://%s", address)
	}
	return &client{
		baseURL: strings.TrimSuffix(address, "/"),
		http:    &http.Client{Timeout: timeout},
	}, nil
}

// call sends the given request body as JSON and decodes the reply into
// reply, if not nil. Error replies are turned into errors.
func (c *client) call(method, path string, body, reply interface{}) error {
	var reqBody io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(buf)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect to seedcheck daemon: %v", err)
	}
	defer resp.Body.Close()

	buf, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= http.StatusBadRequest {
		errReply := errorReply{}
		if err := json.Unmarshal(buf, &errReply); err != nil ||
			len(errReply.Error) <= 0 {
			return fmt.Errorf("%s", resp.Status)
		}
		return fmt.Errorf("%s", errReply.Error)
	}

	if reply == nil || len(buf) <= 0 {
		return nil
	}
	return json.Unmarshal(buf, reply)
}

func getState() (map[string]string, error) {
	file, err := os.ReadFile(statePath)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
		state := make(map[string]string, len(initialState))
		for k, v := range initialState {
			state[k] = v
		}
		if err := writeState(state); err != nil {
			return nil, err
		}
		return state, nil
	}

	data := map[string]string{}
	json.Unmarshal(file, &data)
	return data, nil
}

func setState(partialState map[string]string) error {
	state, err := getState()
	if err != nil {
		return err
	}

	for key, value := range partialState {
		state[key] = value
	}
	return writeState(state)
}

func writeState(state map[string]string) error {
	dir := filepath.Dir(statePath)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		err = os.MkdirAll(dir, 0755)
		if err != nil {
			return fmt.Errorf("failed to create directory: %v", err)
		}
	}

	buf, _ := json.MarshalIndent(state, "", "  ")
	if err := os.WriteFile(statePath, buf, 0600); err != nil {
		return fmt.Errorf("writing to file: %w", err)
	}

	return nil
}

// readMnemonic returns the mnemonic from the given flag or file if any is
// set, otherwise prompts for it without echoing the typed words.
func readMnemonic(flagValue, filePath string) (string, error) {
	if len(strings.TrimSpace(flagValue)) > 0 {
		return flagValue, nil
	}
	if len(filePath) > 0 {
		buf, err := os.ReadFile(cleanAndExpandPath(filePath))
		if err != nil {
			return "", fmt.Errorf("failed to read mnemonic file: %s", err)
		}
		return strings.TrimSpace(string(buf)), nil
	}

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		buf, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(buf)), nil
	}

	fmt.Print("mnemonic: ")
	buf, err := term.ReadPassword(fd)
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read mnemonic: %s", err)
	}
	return strings.TrimSpace(string(buf)), nil
}

func cleanAndExpandPath(path string) string {
	if path == "" {
		return ""
	}

	// Expand initial ~ to OS specific home directory.
	if strings.HasPrefix(path, "~") {
		var homeDir string
		u, err := user.Current()
		if err == nil {
			homeDir = u.HomeDir
		} else {
			homeDir = os.Getenv("HOME")
		}

		path = strings.Replace(path, "~", homeDir, 1)
	}

	return filepath.Clean(os.ExpandEnv(path))
}

func jsonResponse(reply interface{}) (string, error) {
	buf, err := json.MarshalIndent(reply, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal reply: %s", err)
	}
	return string(buf), nil
}

func printJSON(reply interface{}) {
	jsonReply, err := jsonResponse(reply)
	if err != nil {
		printErr(err)
		return
	}
	fmt.Println(jsonReply)
}

func printErr(err error) {
	msg := fmt.Sprintf("%s%s", colorRed, capitalize(err.Error()))
	fmt.Fprintln(os.Stderr, msg)
}

func capitalize(s string) string {
	if len(s) <= 0 {
		return s
	}
	ss := strings.ToUpper(s[0:1])
	ss += s[1:]
	return ss
}

func formatVersion() string {
	return fmt.Sprintf(
		"\nVersion: %s\nCommit: %s\nDate: %s", version, commit, date,
	)
}
