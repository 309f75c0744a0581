package entity

import "time"

type DownloadRequest struct {
	ID      string
	Network string
	Channel string
	Nick    string
	URL     string
	FoundAt time.Time // Time the link was seen, used for the file name
}

// StoredFile is a downloaded file inside the save directory. It is written once.
type StoredFile struct {
	Name string
	Path string
	Size int64
}

type Outcome struct {
	Request *DownloadRequest
	File    *StoredFile
	Err     error
}

func (o *Outcome) Succeeded() bool {
	return o.Err == nil && o.File != nil
}
