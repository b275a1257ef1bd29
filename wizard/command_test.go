package wizard_test

import (
	"testing"

	gojson "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/dashschema"
	"github.com/reoring/dashschema/wizard"
)

var site = wizard.Site{Title: "Penguins", BriefDesc: "Palmer station", DataBackend: "psql"}

func TestEditGraphic(t *testing.T) {
	t.Run("Should encode the graphic form", func(t *testing.T) {
		form, err := wizard.EditGraphic{PageID: 1, Graphic: "bills.json", Status: wizard.StatusCopy, Site: site}.Form()
		require.NoError(t, err)
		assert.Equal(t, "copy", form.Get("graphic_status"))
		assert.Equal(t, "1", form.Get("page_id"))
		assert.Equal(t, "bills.json", form.Get("graphic"))
		assert.Equal(t, "Penguins", form.Get("title"))
		assert.Equal(t, "Palmer station", form.Get("brief_desc"))
		assert.Equal(t, "psql", form.Get("data_backend"))
	})

	t.Run("Should allow a new graphic without a path", func(t *testing.T) {
		assert.NoError(t, wizard.EditGraphic{Status: wizard.StatusNew}.Validate())
	})

	t.Run("Should require a path for existing graphics", func(t *testing.T) {
		err := wizard.EditGraphic{Status: wizard.StatusOld}.Validate()
		require.Error(t, err)
		iss, ok := dashschema.AsIssues(err)
		require.True(t, ok)
		assert.Equal(t, "EditGraphic.Graphic", iss[0].Path)
		assert.Equal(t, "required_unless", iss[0].Params["rule"])
	})

	t.Run("Should reject unknown statuses and backends", func(t *testing.T) {
		err := wizard.EditGraphic{Status: "moved", Graphic: "x.json", Site: wizard.Site{DataBackend: "mongo"}}.Validate()
		iss, ok := dashschema.AsIssues(err)
		require.True(t, ok)
		require.Len(t, iss, 2)
		assert.ErrorIs(t, err, dashschema.ErrInvalidArgument)
	})
}

func TestModifyLayout(t *testing.T) {
	pages := []wizard.Page{
		{WebpageLabel: "Bills", URLEndpoint: "bills", GraphicConfigFiles: []string{"a.json", "b.json"}},
		{WebpageLabel: "Flippers", URLEndpoint: "flippers", GraphicConfigFiles: []string{}},
	}

	t.Run("Should add a page with a sanitized endpoint", func(t *testing.T) {
		got, err := wizard.ModifyLayout{Modification: wizard.AddPage, WebpageLabel: "Body Mass"}.Apply(pages)
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, wizard.Page{WebpageLabel: "Body Mass", URLEndpoint: "body_mass", GraphicConfigFiles: []string{}}, got[2])
		assert.Len(t, pages, 2)
	})

	t.Run("Should reject adding a page without a label", func(t *testing.T) {
		_, err := wizard.ModifyLayout{Modification: wizard.AddPage}.Apply(pages)
		assert.ErrorIs(t, err, dashschema.ErrInvalidArgument)
		_, err = wizard.ModifyLayout{Modification: wizard.AddPage, WebpageLabel: "!!"}.Form()
		assert.ErrorIs(t, err, dashschema.ErrInvalidArgument)
	})

	t.Run("Should delete a page", func(t *testing.T) {
		got, err := wizard.ModifyLayout{Modification: wizard.DeletePage, PageID: 0}.Apply(pages)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "Flippers", got[0].WebpageLabel)
		assert.Equal(t, "Bills", pages[0].WebpageLabel)
	})

	t.Run("Should delete a graphic without touching the input", func(t *testing.T) {
		got, err := wizard.ModifyLayout{Modification: wizard.DeleteGraphic, PageID: 0, Graphic: "a.json"}.Apply(pages)
		require.NoError(t, err)
		assert.Equal(t, []string{"b.json"}, got[0].GraphicConfigFiles)
		assert.Equal(t, []string{"a.json", "b.json"}, pages[0].GraphicConfigFiles)
	})

	t.Run("Should report missing pages and graphics", func(t *testing.T) {
		_, err := wizard.ModifyLayout{Modification: wizard.DeletePage, PageID: 5}.Apply(pages)
		assert.ErrorIs(t, err, dashschema.ErrNodeNotFound)
		_, err = wizard.ModifyLayout{Modification: wizard.DeleteGraphic, PageID: 1, Graphic: "a.json"}.Apply(pages)
		assert.ErrorIs(t, err, dashschema.ErrNodeNotFound)
		_, err = wizard.ModifyLayout{Modification: wizard.DeletePage, PageID: -1}.Apply(pages)
		assert.ErrorIs(t, err, dashschema.ErrInvalidArgument)
	})

	t.Run("Should encode the layout form", func(t *testing.T) {
		form, err := wizard.ModifyLayout{Modification: wizard.AddPage, PageID: 3, WebpageLabel: "Body Mass", Site: site}.Form()
		require.NoError(t, err)
		assert.Equal(t, "add_page", form.Get("modification"))
		assert.Equal(t, "-1", form.Get("page_id"))
		assert.Equal(t, "Body Mass", form.Get("webpage_label"))
		assert.Equal(t, "Penguins", form.Get("title"))
	})
}

func TestResetSelectors(t *testing.T) {
	t.Run("Should post an empty process field to the page", func(t *testing.T) {
		c := wizard.ResetSelectors{Page: "bills", GraphicID: "graphic_0"}
		form, err := c.Form()
		require.NoError(t, err)
		v, ok := form["process"]
		require.True(t, ok)
		assert.Equal(t, []string{""}, v)
		assert.Equal(t, "/dashboard/bills", c.Endpoint())
		assert.Equal(t, "#graphic_0", c.Anchor())
	})

	t.Run("Should require page and graphic", func(t *testing.T) {
		_, err := wizard.ResetSelectors{}.Form()
		iss, ok := dashschema.AsIssues(err)
		require.True(t, ok)
		assert.Len(t, iss, 2)
	})
}

func TestSaveGraphic(t *testing.T) {
	cfg := gojson.RawMessage(`{"graphic_meta_info":{"title":"Bill Length"},"plotly":{},"visualization":{},"selector":{}}`)

	t.Run("Should encode the JSON body", func(t *testing.T) {
		body, err := wizard.SaveGraphic{PageID: 0, Config: cfg, Status: wizard.StatusNew}.Body()
		require.NoError(t, err)
		var got map[string]any
		require.NoError(t, gojson.Unmarshal(body, &got))
		assert.Equal(t, float64(0), got["page_id"])
		assert.Equal(t, "new", got["graphic_status"])
		assert.Equal(t, "", got["graphic_path"])
		assert.Contains(t, got["config_dict"], "graphic_meta_info")
	})

	t.Run("Should name new graphics after their title", func(t *testing.T) {
		c := wizard.SaveGraphic{Config: cfg, Status: wizard.StatusCopy, GraphicPath: "old.json"}
		assert.Equal(t, "Bill Length", c.Title())
		name, err := c.Filename(func(n string) bool { return n == "bill_length.json" })
		require.NoError(t, err)
		assert.Equal(t, "bill_length_0.json", name)
	})

	t.Run("Should keep the path of existing graphics", func(t *testing.T) {
		name, err := wizard.SaveGraphic{Config: cfg, Status: wizard.StatusOld, GraphicPath: "old.json"}.Filename(nil)
		require.NoError(t, err)
		assert.Equal(t, "old.json", name)
	})

	t.Run("Should reject configs that are not objects", func(t *testing.T) {
		err := wizard.SaveGraphic{Config: gojson.RawMessage(`[1]`), Status: wizard.StatusNew}.Validate()
		assert.ErrorIs(t, err, dashschema.ErrInvalidArgument)
		err = wizard.SaveGraphic{Status: wizard.StatusNew}.Validate()
		assert.ErrorIs(t, err, dashschema.ErrInvalidArgument)
	})
}

func TestSaveMain(t *testing.T) {
	body, err := wizard.SaveMain{Config: gojson.RawMessage(`{"title":"x","available_pages":[]}`)}.Body()
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"x","available_pages":[]}`, string(body))

	_, err = wizard.SaveMain{Config: gojson.RawMessage(`"x"`)}.Body()
	assert.ErrorIs(t, err, dashschema.ErrInvalidArgument)
}

func TestUpdateSchemas(t *testing.T) {
	body, err := wizard.UpdateSchemas{DataSources: []string{"penguin_size", "mean_penguin_stat"}}.Body()
	require.NoError(t, err)
	assert.JSONEq(t, `["penguin_size","mean_penguin_stat"]`, string(body))

	_, err = wizard.UpdateSchemas{}.Body()
	assert.ErrorIs(t, err, dashschema.ErrInvalidArgument)
	_, err = wizard.UpdateSchemas{DataSources: []string{""}}.Body()
	assert.ErrorIs(t, err, dashschema.ErrInvalidArgument)
}

func TestUploadActivation(t *testing.T) {
	t.Run("Should encode one field per upload", func(t *testing.T) {
		form, err := wizard.UploadActivation{
			DataSource: "penguin_size",
			Uploads:    map[string]bool{"1": true, "2": false},
		}.Form()
		require.NoError(t, err)
		assert.Equal(t, "penguin_size", form.Get("data_sources"))
		assert.Equal(t, "active", form.Get("1"))
		assert.Equal(t, "inactive", form.Get("2"))
	})

	t.Run("Should reject empty and clashing uploads", func(t *testing.T) {
		_, err := wizard.UploadActivation{DataSource: "x"}.Form()
		assert.ErrorIs(t, err, dashschema.ErrInvalidArgument)
		_, err = wizard.UploadActivation{DataSource: "x", Uploads: map[string]bool{"data_sources": true}}.Form()
		assert.ErrorIs(t, err, dashschema.ErrInvalidArgument)
	})
}
