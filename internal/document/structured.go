package document

import (
	"encoding/json"
	"encoding/xml"

	"github.com/temirov/repoctx/internal/types"
	"github.com/temirov/repoctx/internal/utils"
)

const (
	indentPrefix = ""
	indentSpacer = "  "
	xmlHeader    = xml.Header
)

type jsonDocument struct {
	Root        string             `json:"root"`
	Git         types.GitInfo      `json:"git"`
	Summary     types.Summary      `json:"summary"`
	Tree        string             `json:"tree"`
	Files       []types.FileRecord `json:"files"`
	GeneratedAt string             `json:"generatedAt,omitempty"`
}

type xmlDocument struct {
	XMLName     xml.Name           `xml:"context"`
	Root        string             `xml:"root,attr"`
	GeneratedAt string             `xml:"generatedAt,attr,omitempty"`
	Git         types.GitInfo      `xml:"git"`
	Summary     types.Summary      `xml:"summary"`
	Tree        string             `xml:"tree"`
	Files       []types.FileRecord `xml:"files>file"`
}

func renderJSON(repositoryContext types.RepositoryContext) (string, error) {
	document := jsonDocument{
		Root:        repositoryContext.RootPath,
		Git:         repositoryContext.Git,
		Summary:     repositoryContext.Summary,
		Tree:        repositoryContext.Tree,
		Files:       repositoryContext.Files,
		GeneratedAt: utils.FormatTimestamp(repositoryContext.GeneratedAt),
	}
	if document.Files == nil {
		document.Files = []types.FileRecord{}
	}
	encoded, jsonEncodeError := json.MarshalIndent(document, indentPrefix, indentSpacer)
	if jsonEncodeError != nil {
		return utils.EmptyString, jsonEncodeError
	}
	return string(encoded) + "\n", nil
}

func renderXML(repositoryContext types.RepositoryContext) (string, error) {
	document := xmlDocument{
		Root:        repositoryContext.RootPath,
		GeneratedAt: utils.FormatTimestamp(repositoryContext.GeneratedAt),
		Git:         repositoryContext.Git,
		Summary:     repositoryContext.Summary,
		Tree:        repositoryContext.Tree,
		Files:       repositoryContext.Files,
	}
	encoded, xmlMarshalError := xml.MarshalIndent(document, indentPrefix, indentSpacer)
	if xmlMarshalError != nil {
		return utils.EmptyString, xmlMarshalError
	}
	return xmlHeader + string(encoded) + "\n", nil
}
