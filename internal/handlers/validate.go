package handlers

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"dailyPlanner/internal/service"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

const maxBodySize = 1 << 20

//go:embed schemas/*.json
var schemaFiles embed.FS

var (
	createTaskSchema = mustCompileSchema("create_task.json")
	updateTaskSchema = mustCompileSchema("update_task.json")
)

// тело запроса не разобрано как JSON
var errMalformedBody = errors.New("неверное тело запроса")

func mustCompileSchema(name string) *jsonschema.Schema {
	data, err := schemaFiles.ReadFile("schemas/" + name)
	if err != nil {
		panic(fmt.Sprintf("схема %s: %v", name, err))
	}

	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true
	if err := compiler.AddResource(name, bytes.NewReader(data)); err != nil {
		panic(fmt.Sprintf("схема %s: %v", name, err))
	}
	return compiler.MustCompile(name)
}

func checkContentType(r *http.Request, target string) bool {
	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		return false
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}

	return mediaType == target
}

// decodeValid проверяет тело по схеме и только потом разбирает его в dst.
// Нарушение схемы возвращается как бизнес-ошибка валидации.
func decodeValid(r *http.Request, schema *jsonschema.Schema, dst any) error {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		return fmt.Errorf("%w: %v", errMalformedBody, err)
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("%w: %v", errMalformedBody, err)
	}

	if err := schema.Validate(doc); err != nil {
		return schemaError(err)
	}

	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("%w: %v", errMalformedBody, err)
	}
	return nil
}

func schemaError(err error) error {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return service.NewValidationError("body", err.Error())
	}

	var fields []string
	var reasons []string
	collectSchemaErrors(ve, &fields, &reasons)

	field := "body"
	if len(fields) > 0 && fields[0] != "" {
		field = fields[0]
	}
	reason := strings.Join(reasons, "; ")
	return service.NewBusinessError(service.CodeValidation,
		fmt.Sprintf("Неверное значение поля '%s': %s", field, reason),
		service.ToDetail("field", field),
		service.ToDetail("reason", reason),
		service.ToDetail("violations", fields),
	)
}

func collectSchemaErrors(err *jsonschema.ValidationError, fields, reasons *[]string) {
	if len(err.Causes) == 0 {
		*fields = append(*fields, strings.TrimPrefix(err.InstanceLocation, "/"))
		*reasons = append(*reasons, err.Message)
		return
	}
	for _, cause := range err.Causes {
		collectSchemaErrors(cause, fields, reasons)
	}
}
