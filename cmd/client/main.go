// cmd/client/main.go - small CLI client for the tasknest JSON API
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded .env file")
	}

	baseURL := os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:5000"
	}

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	client := &apiClient{base: baseURL, http: &http.Client{Timeout: 10 * time.Second}}

	var err error
	switch os.Args[1] {
	case "create":
		err = client.create(os.Args[2:])
	case "list":
		err = client.list(os.Args[2:])
	case "done":
		err = client.done(os.Args[2:])
	case "reassign":
		err = client.reassign(os.Args[2:])
	case "categories":
		err = client.categories()
	default:
		usage()
		os.Exit(1)
	}

	if err != nil {
		log.Fatalf("❌ %v", err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `Usage:
  client create -title <t> -owner <o> [-due <d>] [-next <n>] [-priority <p>] [-category <c>]
  client list [-owner <o>] [-priority <p>] [-category <c>]
  client done <id>
  client reassign <id> <owner>
  client categories`)
}

type apiClient struct {
	base string
	http *http.Client
}

func (c *apiClient) create(args []string) error {
	fs := flag.NewFlagSet("create", flag.ExitOnError)
	title := fs.String("title", "", "task title")
	owner := fs.String("owner", "", "task owner")
	due := fs.String("due", "", "due date")
	next := fs.String("next", "", "next step")
	priority := fs.String("priority", "", "priority (high/medium/low)")
	category := fs.String("category", "", "category")
	notes := fs.String("notes", "", "notes")
	if err := fs.Parse(args); err != nil {
		return err
	}

	payload := map[string]interface{}{
		"title":     *title,
		"owner":     *owner,
		"due_date":  *due,
		"next_step": *next,
		"priority":  *priority,
		"notes":     *notes,
	}
	if *category != "" {
		payload["category"] = *category
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	resp, err := c.http.Post(c.base+"/api/newTask", "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	return printResponse(resp)
}

func (c *apiClient) list(args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	owner := fs.String("owner", "", "filter by owner")
	priority := fs.String("priority", "", "filter by priority")
	category := fs.String("category", "", "filter by category")
	if err := fs.Parse(args); err != nil {
		return err
	}

	query := url.Values{}
	if *owner != "" {
		query.Set("owner", *owner)
	}
	if *priority != "" {
		query.Set("priority", *priority)
	}
	if *category != "" {
		query.Set("category", *category)
	}

	resp, err := c.http.Get(c.base + "/api/tasks?" + query.Encode())
	if err != nil {
		return err
	}
	return printResponse(resp)
}

func (c *apiClient) done(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: client done <id>")
	}
	resp, err := c.http.Post(c.base+"/markDone/"+args[0], "application/json", nil)
	if err != nil {
		return err
	}
	return printResponse(resp)
}

func (c *apiClient) reassign(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: client reassign <id> <owner>")
	}
	target := fmt.Sprintf("%s/reassign/%s?to=%s", c.base, args[0], url.QueryEscape(args[1]))
	resp, err := c.http.Post(target, "application/json", nil)
	if err != nil {
		return err
	}
	return printResponse(resp)
}

func (c *apiClient) categories() error {
	resp, err := c.http.Get(c.base + "/api/categories")
	if err != nil {
		return err
	}
	return printResponse(resp)
}

func printResponse(resp *http.Response) error {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, body, "", "  "); err != nil {
		fmt.Println(string(body))
	} else {
		fmt.Println(pretty.String())
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("request failed with status %d", resp.StatusCode)
	}
	return nil
}
