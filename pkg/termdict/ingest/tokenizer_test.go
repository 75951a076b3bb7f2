package ingest

import (
	"reflect"
	"strings"
	"testing"
)

func TestTokenizerBasic(t *testing.T) {
	tokenizer := NewTokenizer([]string{"the", "a", "and", "of"})

	tokens := tokenizer.Tokenize("The operation of a circuit breaker and the relay")

	expected := []string{"operation", "circuit", "breaker", "relay"}
	if !reflect.DeepEqual(tokens, expected) {
		t.Errorf("Expected %v, got %v", expected, tokens)
	}
}

func TestTokenizerHyphensAndNumbers(t *testing.T) {
	tokenizer := NewTokenizer([]string{})

	tokens := tokenizer.Tokenize("3-phase induction motor rated 400 V, --dc-- supply 2024")

	expected := []string{"3-phase", "induction", "motor", "rated", "dc", "supply"}
	if !reflect.DeepEqual(tokens, expected) {
		t.Errorf("Expected %v, got %v", expected, tokens)
	}
}

func TestTokenizerApostropheSplits(t *testing.T) {
	tokenizer := NewTokenizer([]string{})

	tokens := tokenizer.Tokenize("Ohm's Law")

	// "s" is a one-letter fragment and is dropped
	expected := []string{"ohm", "law"}
	if !reflect.DeepEqual(tokens, expected) {
		t.Errorf("Expected %v, got %v", expected, tokens)
	}
}

func TestTokenizerCaseNormalization(t *testing.T) {
	tokenizer := NewTokenizer([]string{"THE"})

	for _, tok := range tokenizer.Tokenize("The THEVENIN Equivalent") {
		if tok != strings.ToLower(tok) {
			t.Errorf("Token %s should be lowercased", tok)
		}
		if tok == "the" {
			t.Error("uppercase stopword should still filter")
		}
	}
}

func TestAddStopword(t *testing.T) {
	tokenizer := NewTokenizer([]string{"the"})

	tokens := tokenizer.Tokenize("the cat")
	if len(tokens) != 1 || tokens[0] != "cat" {
		t.Error("Should filter 'the'")
	}

	tokenizer.AddStopword("Cat")
	if tokens = tokenizer.Tokenize("the Cat sat"); len(tokens) != 1 || tokens[0] != "sat" {
		t.Errorf("'cat' should be filtered after adding, got %v", tokens)
	}
}

func TestNGrams(t *testing.T) {
	tokens := []string{"circuit", "breaker", "trip", "circuit", "breaker"}

	got := NGrams(tokens, 2, 3)
	expected := []string{
		"circuit breaker",
		"breaker trip",
		"trip circuit",
		"circuit breaker trip",
		"breaker trip circuit",
		"trip circuit breaker",
	}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("Expected %v, got %v", expected, got)
	}
}

func TestNGramsShortInput(t *testing.T) {
	if got := NGrams([]string{"single"}, 2, 3); len(got) != 0 {
		t.Errorf("expected no bigrams from one token, got %v", got)
	}
	if got := NGrams(nil, 1, 1); len(got) != 0 {
		t.Errorf("expected nothing from empty input, got %v", got)
	}
	if got := NGrams([]string{"a1", "b2"}, 0, 1); !reflect.DeepEqual(got, []string{"a1", "b2"}) {
		t.Errorf("min below one should be treated as one, got %v", got)
	}
}
