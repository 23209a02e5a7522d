package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tristendillon/carve/core/models"
)

const origin = "src/app/components/word-cloud/word-cloud.ts"

func newClassifier() *Classifier {
	return New("@angular/", "src/app/components", "src/app/components/word-cloud")
}

func TestCategoryOf(t *testing.T) {
	tests := []struct {
		raw  string
		want models.Category
	}{
		{"./legend", models.CategoryLocal},
		{"../../shared/color-utils", models.CategoryLocal},
		{"@angular/core", models.CategoryFramework},
		{"@angular/common/http", models.CategoryFramework},
		{"@ngrx/store", models.CategoryExternal},
		{"d3", models.CategoryExternal},
		{"/abs/path", models.CategoryExternal},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, CategoryOf(tt.raw, "@angular/"))
		})
	}
}

func TestClassifyBuckets(t *testing.T) {
	c := newClassifier()
	tests := []struct {
		raw      string
		bucket   models.Bucket
		resolved string
	}{
		{"../../shared/color-utils", models.BucketShared, "src/app/shared/color-utils"},
		{"../../services/data.service", models.BucketServices, "src/app/services/data.service"},
		{"../../models/palette", models.BucketModels, "src/app/models/palette"},
		{"../legend/legend", models.BucketComponents, "src/app/components/legend"},
		{"./word-cloud.model", models.BucketNone, "src/app/components/word-cloud/word-cloud.model"},
		{"../../../../../outside", models.BucketNone, "../outside"},
		// services wins over shared
		{"../../shared/services/api", models.BucketServices, "src/app/shared/services/api"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			ref := c.Classify(origin, tt.raw)
			assert.Equal(t, models.CategoryLocal, ref.Category)
			assert.Equal(t, tt.bucket, ref.Bucket)
			assert.Equal(t, tt.resolved, ref.Resolved)
			assert.Equal(t, origin, ref.Origin)
		})
	}
}

func TestClassifyExcludesCurrentComponentFromComponentsBucket(t *testing.T) {
	ref := newClassifier().Classify(origin, "./parts/cloud-item")
	assert.Equal(t, models.BucketNone, ref.Bucket)
}

func TestClassifyNonLocalHasNoBucket(t *testing.T) {
	ref := newClassifier().Classify(origin, "@angular/core")
	assert.Equal(t, models.CategoryFramework, ref.Category)
	assert.Equal(t, models.BucketNone, ref.Bucket)
	assert.Empty(t, ref.Resolved)
}

func TestClassifyIsIdempotent(t *testing.T) {
	c := newClassifier()
	for _, raw := range []string{"../legend/legend", "d3", "@angular/core", "../../shared/x"} {
		assert.Equal(t, c.Classify(origin, raw), c.Classify(origin, raw))
	}
}

func TestPackageName(t *testing.T) {
	tests := []struct {
		raw  string
		want string
		ok   bool
	}{
		{"d3", "d3", true},
		{"lodash/fp", "lodash", true},
		{"@ngrx/store", "@ngrx/store", true},
		{"@ngrx/store/testing", "@ngrx/store", true},
		{"chart.js/auto", "chart.js", true},
		{"@angular/core", "", false},
		{"@angular/common/http", "", false},
		{"@angular/material/button", "@angular/material", true},
		{"@angular/cdk", "@angular/cdk", true},
		{"./local", "", false},
		{"/abs", "", false},
		{"@broken", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := PackageName(tt.raw, "@angular/", []string{"@angular/core", "@angular/common"})
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
