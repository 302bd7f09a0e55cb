package config

import (
	"strings"

	"github.com/pkg/errors"
)

const Description = `A rainconfig is a JSON or Jsonnet file that names the metadata dotrain
documents are parsed against. It is read from the --config path, or from
rainconfig.json in the working directory when that exists. All fields are
optional.`

// Field describes one top level rainconfig field.
type Field struct {
	Name        string
	Description string
}

// Fields lists every rainconfig field in the order they are documented.
var Fields = []Field{
	{"include", `An array of paths to JSON files, each mapping meta hashes to records.
Relative paths are resolved against the directory of the rainconfig.`},
	{"metas", `An object mapping meta hashes to records given inline. A record has any
of "dispair", "contractMeta" and "dotrain".`},
	{"sources", `An array of base URLs or directories searched for hashes no record is
known for. A hash is looked up as <source>/<hash>.json.`},
	{"noMetaSearch", `A boolean that turns off searching the sources while parsing.`},
	{"cacheSize", `The number of records the meta store keeps, 1024 when unset.`},
}

// DescribeField returns the description of the field called name.
func DescribeField(name string) (string, error) {
	for _, field := range Fields {
		if strings.EqualFold(field.Name, name) {
			return field.Description, nil
		}
	}
	return "", errors.Errorf("unknown rainconfig field: %s", name)
}
