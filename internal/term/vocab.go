package term

// Namespaces.
const (
	RDFNamespace = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	XSDNamespace = "http://www.w3.org/2001/XMLSchema#"
)

// Well-known IRIs.
const (
	RDFType       IRI = RDFNamespace + "type"
	RDFLangString IRI = RDFNamespace + "langString"

	XSDString  IRI = XSDNamespace + "string"
	XSDBoolean IRI = XSDNamespace + "boolean"
	XSDInteger IRI = XSDNamespace + "integer"
	XSDDecimal IRI = XSDNamespace + "decimal"
	XSDDouble  IRI = XSDNamespace + "double"
	XSDFloat   IRI = XSDNamespace + "float"
)

// integerTypes are the xsd types derived from xsd:integer.
var integerTypes = map[IRI]bool{
	XSDInteger:                            true,
	XSDNamespace + "int":                  true,
	XSDNamespace + "long":                 true,
	XSDNamespace + "short":                true,
	XSDNamespace + "byte":                 true,
	XSDNamespace + "nonNegativeInteger":   true,
	XSDNamespace + "nonPositiveInteger":   true,
	XSDNamespace + "positiveInteger":      true,
	XSDNamespace + "negativeInteger":      true,
	XSDNamespace + "unsignedLong":         true,
	XSDNamespace + "unsignedInt":          true,
	XSDNamespace + "unsignedShort":        true,
	XSDNamespace + "unsignedByte":         true,
}
