package service

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/noah-isme/quiz-api/internal/dto"
)

const quizImportSchemaURL = "https://quiz-api.local/schemas/quiz_import.schema.json"

//go:embed schemas/quiz_import.schema.json
var quizImportSchemaSource string

var (
	quizImportSchemaOnce sync.Once
	quizImportSchema     *jsonschema.Schema
	quizImportSchemaErr  error
)

func loadQuizImportSchema() (*jsonschema.Schema, error) {
	quizImportSchemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft7
		if err := compiler.AddResource(quizImportSchemaURL, strings.NewReader(quizImportSchemaSource)); err != nil {
			quizImportSchemaErr = err
			return
		}
		quizImportSchema, quizImportSchemaErr = compiler.Compile(quizImportSchemaURL)
	})
	return quizImportSchema, quizImportSchemaErr
}

// decodeQuizDocument validates a raw import document against the embedded schema and decodes it.
func decodeQuizDocument(document []byte) (dto.QuizCreateRequest, error) {
	schema, err := loadQuizImportSchema()
	if err != nil {
		return dto.QuizCreateRequest{}, fmt.Errorf("load quiz import schema: %w", err)
	}

	decoder := json.NewDecoder(bytes.NewReader(document))
	decoder.UseNumber()
	var raw interface{}
	if err := decoder.Decode(&raw); err != nil {
		return dto.QuizCreateRequest{}, fmt.Errorf("%w: %v", ErrInvalidQuizDocument, err)
	}
	if err := schema.Validate(raw); err != nil {
		return dto.QuizCreateRequest{}, fmt.Errorf("%w: %v", ErrInvalidQuizDocument, err)
	}

	var payload dto.QuizCreateRequest
	if err := json.Unmarshal(document, &payload); err != nil {
		return dto.QuizCreateRequest{}, fmt.Errorf("%w: %v", ErrInvalidQuizDocument, err)
	}
	return payload, nil
}
