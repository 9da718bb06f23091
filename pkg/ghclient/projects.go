/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package ghclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// graphqlURL is the GitHub GraphQL endpoint. Organization project membership
// has no REST equivalent, so project titles are resolved with one small
// GraphQL query.
var graphqlURL = "https://api.github.com/graphql"

const projectTitlesQuery = `query($owner: String!, $repo: String!, $number: Int!) {
  repository(owner: $owner, name: $repo) {
    issueOrPullRequest(number: $number) {
      ... on Issue {
        projectItems(first: 50) { nodes { project { title } } }
      }
      ... on PullRequest {
        projectItems(first: 50) { nodes { project { title } } }
      }
    }
  }
}`

type projectItemsResponse struct {
	Data struct {
		Repository struct {
			IssueOrPullRequest struct {
				ProjectItems struct {
					Nodes []struct {
						Project struct {
							Title string `json:"title"`
						} `json:"project"`
					} `json:"nodes"`
				} `json:"projectItems"`
			} `json:"issueOrPullRequest"`
		} `json:"repository"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// ProjectTitles returns the titles of the organization projects the given
// issue or pull request is attached to.
func (r *Repo) ProjectTitles(ctx context.Context, number int) ([]string, error) {
	payload, err := json.Marshal(map[string]any{
		"query": projectTitlesQuery,
		"variables": map[string]any{
			"owner":  r.owner,
			"repo":   r.name,
			"number": number,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling project query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, graphqlURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("building project query: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	// Reuse the authenticated transport behind the REST client.
	resp, err := r.gh.Client().Do(req)
	if err != nil {
		return nil, fmt.Errorf("querying projects for #%d: %w", number, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("querying projects for #%d: unexpected status %s", number, resp.Status)
	}

	var decoded projectItemsResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decoding project query response: %w", err)
	}
	if len(decoded.Errors) > 0 {
		return nil, fmt.Errorf("querying projects for #%d: %s", number, decoded.Errors[0].Message)
	}

	var titles []string
	for _, node := range decoded.Data.Repository.IssueOrPullRequest.ProjectItems.Nodes {
		titles = append(titles, node.Project.Title)
	}
	return titles, nil
}
