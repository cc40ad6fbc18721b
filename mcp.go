package gnupg

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Version of this SDK, reported by the MCP server.
const Version = "0.1.0"

// Schema is a JSON Schema object for tool input validation.
type Schema = jsonschema.Schema

// NewMCPServer creates an MCP server exposing the client's operations as
// tools. Text in and text out, so configure the client with WithArmor for
// the encrypt tool to produce readable ciphertext.
//
// Serve it over any MCP transport:
//
//	g := gnupg.New(gnupg.WithArmor(true))
//	server := gnupg.NewMCPServer(g)
//	server.Run(ctx, &mcp.StdioTransport{})
func NewMCPServer(g *GPG) *mcp.Server {
	h := &toolHandler{gpg: g}

	s := mcp.NewServer(&mcp.Implementation{Name: "gnupg", Version: Version}, &mcp.ServerOptions{
		Capabilities: &mcp.ServerCapabilities{
			Tools: &mcp.ToolCapabilities{ListChanged: false},
		},
	})

	mcp.AddTool(s, &mcp.Tool{
		Name:        "gpg_encrypt",
		Description: "Encrypt text for one or more recipient keys. Returns the ciphertext.",
	}, h.encrypt)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "gpg_decrypt",
		Description: "Decrypt a GnuPG message. Returns the plaintext.",
	}, h.decrypt)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "gpg_verify",
		Description: "Verify the signature on a signed message. Returns the verification verdict.",
	}, h.verify)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "gpg_list_keys",
		Description: "List the keys in the keyring, one per line as KEYID<TAB>USERID.",
	}, h.listKeys)

	// Plain handler with an explicit schema; no arguments to bind.
	s.AddTool(&mcp.Tool{
		Name:        "gpg_version",
		Description: "Report the installed GnuPG version.",
		InputSchema: SimpleSchema(nil),
	}, h.version)

	return s
}

// SimpleSchema creates an object Schema from a property-name-to-Go-type
// map, e.g. {"count": "int", "names": "[]string"}. All properties are
// required. A nil or empty map yields an empty object schema.
func SimpleSchema(props map[string]string) *Schema {
	properties := make(map[string]*Schema, len(props))
	required := make([]string, 0, len(props))

	for name, goType := range props {
		properties[name] = goTypeToSchema(goType)
		required = append(required, name)
	}

	return &Schema{
		Type:       "object",
		Properties: properties,
		Required:   required,
	}
}

func goTypeToSchema(goType string) *Schema {
	switch goType {
	case "string":
		return &Schema{Type: "string"}
	case "int", "int32", "int64", "uint", "uint32", "uint64":
		return &Schema{Type: "integer"}
	case "float32", "float64":
		return &Schema{Type: "number"}
	case "bool":
		return &Schema{Type: "boolean"}
	default:
		if after, ok := strings.CutPrefix(goType, "[]"); ok {
			return &Schema{Type: "array", Items: goTypeToSchema(after)}
		}

		return &Schema{Type: "string"}
	}
}

type toolHandler struct {
	gpg *GPG
}

type encryptParams struct {
	Plaintext  string   `json:"plaintext" jsonschema:"the text to encrypt"`
	Recipients []string `json:"recipients" jsonschema:"key IDs or user IDs of the recipients"`
}

func (h *toolHandler) encrypt(ctx context.Context, req *mcp.CallToolRequest, params encryptParams) (*mcp.CallToolResult, any, error) {
	if len(params.Recipients) == 0 {
		return errorResult("at least one recipient is required")
	}

	var out bytes.Buffer

	if err := h.gpg.Encrypt(ctx, strings.NewReader(params.Plaintext), &out, params.Recipients...); err != nil {
		return errorResult(fmt.Sprintf("encrypt failed: %v", err))
	}

	return textResult(out.String())
}

type decryptParams struct {
	Ciphertext string `json:"ciphertext" jsonschema:"the GnuPG message to decrypt"`
}

func (h *toolHandler) decrypt(ctx context.Context, req *mcp.CallToolRequest, params decryptParams) (*mcp.CallToolResult, any, error) {
	var out bytes.Buffer

	if err := h.gpg.Decrypt(ctx, strings.NewReader(params.Ciphertext), &out); err != nil {
		return errorResult(fmt.Sprintf("decrypt failed: %v", err))
	}

	return textResult(out.String())
}

type verifyParams struct {
	Signed string `json:"signed" jsonschema:"the signed message to verify"`
}

func (h *toolHandler) verify(ctx context.Context, req *mcp.CallToolRequest, params verifyParams) (*mcp.CallToolResult, any, error) {
	err := h.gpg.Verify(ctx, strings.NewReader(params.Signed))
	if err == nil {
		return textResult("Signature is valid.")
	}

	if IsBadSignature(err) {
		return errorResult("BAD signature: the message does not match the signature.")
	}

	return errorResult(fmt.Sprintf("verify failed: %v", err))
}

type listKeysParams struct {
	Secret bool `json:"secret,omitempty" jsonschema:"list secret keys instead of public keys"`
}

func (h *toolHandler) listKeys(ctx context.Context, req *mcp.CallToolRequest, params listKeysParams) (*mcp.CallToolResult, any, error) {
	var (
		keys []Key
		err  error
	)

	if params.Secret {
		keys, err = h.gpg.ListSecretKeys(ctx)
	} else {
		keys, err = h.gpg.ListKeys(ctx)
	}

	if err != nil {
		return errorResult(fmt.Sprintf("list keys failed: %v", err))
	}

	if len(keys) == 0 {
		return textResult("No keys found.")
	}

	var b strings.Builder
	for _, key := range keys {
		uid := ""
		if len(key.UserIDs) > 0 {
			uid = key.UserIDs[0]
		}

		fmt.Fprintf(&b, "%s\t%s\n", key.KeyID, uid)
	}

	return textResult(b.String())
}

func (h *toolHandler) version(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	version, err := h.gpg.Version(ctx)
	if err != nil {
		result, _, _ := errorResult(fmt.Sprintf("version probe failed: %v", err))

		return result, nil
	}

	result, _, _ := textResult(version)

	return result, nil
}

// textResult builds a text-only tool result.
func textResult(text string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}, nil, nil
}

// errorResult builds an error tool result.
func errorResult(text string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: true,
	}, nil, nil
}
