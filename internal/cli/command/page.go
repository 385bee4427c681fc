package command

import (
	"fmt"
	"net/http"
	"os"
	"sort"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/pagegate/internal/cli/connection"
	"github.com/yndnr/pagegate/internal/cli/output"
)

// PageView is the structured form of a page response.
type PageView struct {
	Status  int               `json:"status" yaml:"status"`
	Headers map[string]string `json:"headers" yaml:"headers"`
	Body    string            `json:"body,omitempty" yaml:"body,omitempty"`
}

// GetCommand returns the get command.
func GetCommand() *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "Fetch a page from the server",
		ArgsUsage: "PATH",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "head",
				Aliases: []string{"I"},
				Usage:   "print the status line and headers instead of the body",
			},
		},
		Action: pageGet,
	}
}

// PostCommand returns the post command.
func PostCommand() *cli.Command {
	return &cli.Command{
		Name:      "post",
		Usage:     "Send a POST request to the server",
		ArgsUsage: "PATH",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "data",
				Aliases: []string{"d"},
				Usage:   "request body, or @FILE to read it from a file",
			},
			&cli.StringFlag{
				Name:  "content-type",
				Usage: "request content type",
				Value: "application/x-www-form-urlencoded",
			},
		},
		Action: pagePost,
	}
}

func pageGet(c *cli.Context) error {
	path, err := pathArg(c)
	if err != nil {
		return err
	}
	resp, err := GetConnectionManager(c).HTTP().Get(c.Context, path)
	if err != nil {
		return fmt.Errorf("get %s: %w", path, err)
	}
	return writePage(c, resp, c.Bool("head"))
}

func pagePost(c *cli.Context) error {
	path, err := pathArg(c)
	if err != nil {
		return err
	}
	body, err := readData(c.String("data"))
	if err != nil {
		return err
	}
	resp, err := GetConnectionManager(c).HTTP().Post(c.Context, path, body, c.String("content-type"))
	if err != nil {
		return fmt.Errorf("post %s: %w", path, err)
	}
	return writePage(c, resp, false)
}

func pathArg(c *cli.Context) (string, error) {
	if c.NArg() != 1 {
		return "", fmt.Errorf("%s: exactly one PATH argument is required", c.Command.Name)
	}
	path := c.Args().First()
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return path, nil
}

func readData(data string) ([]byte, error) {
	if name, ok := strings.CutPrefix(data, "@"); ok {
		b, err := os.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("read data file: %w", err)
		}
		return b, nil
	}
	return []byte(data), nil
}

// writePage prints resp and reports error statuses as a failed command.
func writePage(c *cli.Context, resp *connection.Response, head bool) error {
	w := writer(c)
	if outputFormat(c) == output.FormatTable {
		if head {
			fmt.Fprintf(w, "%s %s\n", resp.Proto, resp.Status)
			for _, k := range sortedKeys(resp.Header) {
				for _, v := range resp.Header[k] {
					fmt.Fprintf(w, "%s: %s\n", k, v)
				}
			}
		} else if _, err := w.Write(resp.Body); err != nil {
			return err
		}
	} else {
		view := PageView{Status: resp.StatusCode, Headers: make(map[string]string, len(resp.Header))}
		for k := range resp.Header {
			view.Headers[k] = strings.Join(resp.Header[k], ", ")
		}
		if !head {
			view.Body = string(resp.Body)
		}
		if err := render(c, view); err != nil {
			return err
		}
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("server returned %s", resp.Status)
	}
	return nil
}

func sortedKeys(h http.Header) []string {
	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
