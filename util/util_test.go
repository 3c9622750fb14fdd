package util

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestContains(t *testing.T) {
	Convey("Contains", t, func() {
		Convey("present", func() {
			So(Contains([]string{"a", "b", "c"}, "b"), ShouldBeTrue)
		})
		Convey("absent", func() {
			So(Contains([]string{"a", "b", "c"}, "d"), ShouldBeFalse)
		})
		Convey("empty slice", func() {
			So(Contains(nil, "a"), ShouldBeFalse)
		})
	})
}

func TestRandStr(t *testing.T) {
	Convey("RandStr", t, func() {
		Convey("returns the node field of a uuid", func() {
			So(len(RandStr()), ShouldEqual, 12)
		})
		Convey("returns distinct values", func() {
			So(RandStr(), ShouldNotEqual, RandStr())
		})
	})
}

func TestWriteBackError(t *testing.T) {
	Convey("WriteBackError", t, func() {
		w := httptest.NewRecorder()
		WriteBackError(w, "index not found", http.StatusNotFound)

		So(w.Code, ShouldEqual, http.StatusNotFound)
		So(w.Header().Get("Content-Type"), ShouldEqual, "application/json; charset=utf-8")

		var body map[string]map[string]interface{}
		So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)
		So(body["error"]["message"], ShouldEqual, "index not found")
		So(body["error"]["status"], ShouldEqual, http.StatusText(http.StatusNotFound))
	})
}
