package github

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

var (
	BaseURL = "https://api.github.com"
	Client  = &http.Client{Timeout: time.Second * 5}
)

type Release struct {
	Version string `json:"tag_name"`
	URL     string `json:"html_url"`
}

func FetchLatestRelease(repo string, client *http.Client) (*Release, error) {
	url := fmt.Sprintf("%s/repos/%s/releases/latest", BaseURL, repo)
	resp, err := client.Get(url)

	if err != nil {
		return nil, err
	}

	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)

	if err != nil {
		return nil, fmt.Errorf("failed reading API response: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s", string(body))
	}

	release := &Release{}

	if err = json.Unmarshal(body, release); err != nil {
		return nil, fmt.Errorf("failed parsing JSON response: %v", err)
	}

	return release, nil
}
