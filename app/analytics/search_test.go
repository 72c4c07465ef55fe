package analytics

import (
	"testing"

	"github.com/findash/articledesk/app/article"
)

func TestFilter_BlankQueryReturnsInput(t *testing.T) {
	articles := []article.Article{
		{IdentityKey: "a", Title: "First"},
		{IdentityKey: "b", Title: "Second"},
	}

	for _, query := range []string{"", "   "} {
		result := Filter(articles, query)
		if len(result) != len(articles) {
			t.Fatalf("Expected all articles for query '%s', got %d", query, len(result))
		}
		for i := range articles {
			if result[i].IdentityKey != articles[i].IdentityKey {
				t.Errorf("Expected identical order for blank query")
			}
		}
	}
}

func TestFilter_MatchesTagsSubstring(t *testing.T) {
	articles := []article.Article{
		{IdentityKey: "match", Tags: []string{"aapl-earnings"}},
		{IdentityKey: "miss", Tags: []string{"tsla-deliveries"}},
	}

	result := Filter(articles, "AAPL")

	if len(result) != 1 || result[0].IdentityKey != "match" {
		t.Errorf("Expected case-insensitive tag substring match, got %v", result)
	}
}

func TestFilter_MatchesAnyCandidateField(t *testing.T) {
	articles := []article.Article{
		{IdentityKey: "title", Title: "Fed decision looms"},
		{IdentityKey: "body", BodyText: "The fed held rates"},
		{IdentityKey: "source", SourceLabel: "FedWire"},
		{IdentityKey: "author", Authors: []string{"Fedor Iv"}},
		{IdentityKey: "keyword", Keywords: []string{"fed"}},
		{IdentityKey: "none", Title: "Earnings recap"},
	}

	result := Filter(articles, "fed")

	if len(result) != 5 {
		t.Fatalf("Expected 5 matches, got %d", len(result))
	}
	for _, a := range result {
		if a.IdentityKey == "none" {
			t.Error("Article with no matching field must not match")
		}
	}
}

func TestFilter_PreservesOrder(t *testing.T) {
	articles := []article.Article{
		{IdentityKey: "c", Title: "fed three"},
		{IdentityKey: "a", Title: "fed one"},
		{IdentityKey: "b", Title: "fed two"},
	}

	result := Filter(articles, "fed")

	want := []string{"c", "a", "b"}
	for i, key := range want {
		if result[i].IdentityKey != key {
			t.Errorf("Position %d: expected '%s', got '%s'", i, key, result[i].IdentityKey)
		}
	}
}

func TestFilter_NoMatches(t *testing.T) {
	articles := []article.Article{{IdentityKey: "a", Title: "Earnings"}}

	result := Filter(articles, "crypto")

	if len(result) != 0 {
		t.Errorf("Expected no matches, got %d", len(result))
	}
}
