package mongodb

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"
)

func Test_matches(t *testing.T) {
	tests := []struct {
		name  string
		el    interface{}
		match bson.M
		want  bool
	}{
		{
			name:  "bson.M hit",
			el:    bson.M{"id": "t1", "description": "Essay"},
			match: bson.M{"id": "t1"},
			want:  true,
		},
		{
			name:  "bson.M miss",
			el:    bson.M{"id": "t2"},
			match: bson.M{"id": "t1"},
		},
		{
			name:  "bson.D hit",
			el:    bson.D{{Key: "id", Value: "t1"}, {Key: "active", Value: true}},
			match: bson.M{"id": "t1"},
			want:  true,
		},
		{
			name:  "bson.D miss",
			el:    bson.D{{Key: "id", Value: "t2"}},
			match: bson.M{"id": "t1"},
		},
		{
			name:  "multiple id fields must all match",
			el:    bson.M{"id": "t1", "creator_id": int64(7)},
			match: bson.M{"id": "t1", "creator_id": int64(8)},
		},
		{
			name:  "absent field",
			el:    bson.M{"description": "Essay"},
			match: bson.M{"id": "t1"},
		},
		{
			name:  "non-document element",
			el:    "t1",
			match: bson.M{"id": "t1"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := matches(tt.el, tt.match); got != tt.want {
				t.Errorf("matches() = %v, want %v", got, tt.want)
			}
		})
	}
}
