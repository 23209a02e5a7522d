package models

type Category int

const (
	CategoryLocal Category = iota
	CategoryFramework
	CategoryExternal
)

func (c Category) String() string {
	switch c {
	case CategoryLocal:
		return "local"
	case CategoryFramework:
		return "framework"
	case CategoryExternal:
		return "external"
	default:
		return "unknown"
	}
}

type Bucket string

const (
	BucketNone       Bucket = ""
	BucketServices   Bucket = "services"
	BucketComponents Bucket = "components"
	BucketModels     Bucket = "models"
	BucketShared     Bucket = "shared"
	BucketAssets     Bucket = "assets"
)

// Buckets lists every bucket in copy order.
var Buckets = []Bucket{BucketServices, BucketComponents, BucketModels, BucketShared, BucketAssets}

type ImportReference struct {
	Origin   string   // file containing the statement, relative to the project root
	Raw      string   // module string as written
	Resolved string   // project-relative target, local references only
	Category Category
	Bucket   Bucket
}
