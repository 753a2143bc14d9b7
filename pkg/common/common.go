package common

import (
	"encoding/json"
	"io"
	"log"
	"math/rand"
	"net/http"
)

type Msg struct {
	Message string `json:"message"`
}

// ErrMsg is the body of every non-2xx response.
type ErrMsg struct {
	Detail string `json:"detail"`
}

func WriteMsg(w http.ResponseWriter, msg string, code int) {
	w.WriteHeader(code)
	WriteRespJSON(w, Msg{msg})
}

func WriteErr(w http.ResponseWriter, detail string, code int) {
	w.WriteHeader(code)
	WriteRespJSON(w, ErrMsg{detail})
}

var letterRunes = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ")

func RandStringRunes(n int) string {
	b := make([]rune, n)
	for i := range b {
		b[i] = letterRunes[rand.Intn(len(letterRunes))]
	}
	return string(b)
}

func ParseReqBody(body io.Reader, ptr interface{}) error {
	err := json.NewDecoder(body).Decode(ptr)
	if err != nil {
		return err
	}
	return nil
}

func WriteRespJSON(w http.ResponseWriter, data interface{}) {
	resp, err := json.Marshal(data)
	if err != nil {
		log.Println("common: JSON marshaling failed", err)
		WriteErr(w, "response failed", http.StatusInternalServerError)
		return
	}

	_, err = w.Write(resp)
	if err != nil {
		log.Println("common: failed writing response", err)
	}
}
