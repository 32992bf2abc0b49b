// Package docmeta reads Dublin Core metadata (docProps/core.xml) from a
// .docx container. Metadata is optional everywhere it is consumed, so a
// missing or malformed part yields empty properties rather than an error.
package docmeta

import (
	"encoding/xml"
	"strings"

	"docx2md/internal/container"
)

// Properties holds the document metadata relevant to front-matter
// synthesis.
type Properties struct {
	Title    string
	Author   string
	Subject  string
	Keywords []string
}

type corePropertiesXML struct {
	XMLName  xml.Name `xml:"coreProperties"`
	Title    string   `xml:"title"`
	Creator  string   `xml:"creator"`
	Subject  string   `xml:"subject"`
	Keywords string   `xml:"keywords"`
}

// Read extracts core properties from the container at path. All fields are
// empty when the part is absent or unparseable.
func Read(path string) Properties {
	data, err := container.ReadPart(path, "docProps/core.xml")
	if err != nil {
		return Properties{}
	}

	var core corePropertiesXML
	if err := xml.Unmarshal(data, &core); err != nil {
		return Properties{}
	}

	props := Properties{
		Title:   strings.TrimSpace(core.Title),
		Author:  strings.TrimSpace(core.Creator),
		Subject: strings.TrimSpace(core.Subject),
	}
	if core.Keywords != "" {
		for _, kw := range strings.Split(core.Keywords, ",") {
			if kw = strings.TrimSpace(kw); kw != "" {
				props.Keywords = append(props.Keywords, kw)
			}
		}
	}
	return props
}
