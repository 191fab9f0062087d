package advertisements

// UploadedFile is a stored creative asset: the multipart field it arrived
// under and the stable path reference produced by the upload layer.
type UploadedFile struct {
	FieldName string
	Path      string
}

// BuildFileMap groups stored file paths by their form field name. A field may
// carry multiple files; order within a field is preserved.
func BuildFileMap(files []UploadedFile) map[string][]string {
	fileMap := make(map[string][]string)
	for _, f := range files {
		if f.FieldName == "" || f.Path == "" {
			continue
		}
		fileMap[f.FieldName] = append(fileMap[f.FieldName], f.Path)
	}
	return fileMap
}
