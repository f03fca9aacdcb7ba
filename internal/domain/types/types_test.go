package types_test

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	. "github.com/smartystreets/goconvey/convey"

	types "github.com/okian/akreditasi/internal/domain/types"
)

func TestEntry(t *testing.T) {
	Convey("Given an Entry struct", t, func() {
		Convey("When creating an entry with zero values", func() {
			entry := types.Entry{}

			Convey("Then it should have default values", func() {
				So(entry.Rank, ShouldEqual, 0)
				So(entry.ProgramID, ShouldEqual, uuid.Nil)
				So(entry.Score, ShouldEqual, 0.0)
			})
		})

		Convey("When encoding an entry", func() {
			id := uuid.MustParse("6f1c2b3a-0000-4000-8000-000000000001")
			b, err := json.Marshal(types.Entry{Rank: 2, ProgramID: id, Name: "Informatika", Score: 3.25, Grade: "Sangat Baik"})

			Convey("Then it uses snake_case keys", func() {
				So(err, ShouldBeNil)
				So(string(b), ShouldEqual, `{"rank":2,"program_id":"6f1c2b3a-0000-4000-8000-000000000001","name":"Informatika","score":3.25,"grade":"Sangat Baik"}`)
			})
		})
	})
}
