// Package twiml builds Twilio call-control markup documents.
// Twilio expects Content-Type: text/xml.
package twiml

import (
	"encoding/xml"
)

// Response TwiML根元素，子动词按追加顺序执行
type Response struct {
	XMLName xml.Name      `xml:"Response"`
	Verbs   []interface{} `xml:",omitempty"`
}

// Say 播放语音提示
type Say struct {
	XMLName xml.Name `xml:"Say"`
	Voice   string   `xml:"voice,attr,omitempty"`
	Text    string   `xml:",chardata"`
}

// Gather 收集按键或语音输入
type Gather struct {
	XMLName               xml.Name      `xml:"Gather"`
	Input                 string        `xml:"input,attr,omitempty"` // "dtmf", "speech", "dtmf speech"
	NumDigits             int           `xml:"numDigits,attr,omitempty"`
	Timeout               int           `xml:"timeout,attr,omitempty"`
	SpeechTimeout         string        `xml:"speechTimeout,attr,omitempty"`
	Action                string        `xml:"action,attr,omitempty"`
	Method                string        `xml:"method,attr,omitempty"`
	Hints                 string        `xml:"hints,attr,omitempty"`
	PartialResultCallback string        `xml:"partialResultCallback,attr,omitempty"`
	Verbs                 []interface{} `xml:",omitempty"`
}

// Redirect 将通话控制转移到另一个webhook
type Redirect struct {
	XMLName xml.Name `xml:"Redirect"`
	Method  string   `xml:"method,attr,omitempty"`
	URL     string   `xml:",chardata"`
}

// Enqueue 将呼叫方放入命名等待队列
type Enqueue struct {
	XMLName xml.Name `xml:"Enqueue"`
	WaitURL string   `xml:"waitUrl,attr,omitempty"`
	Name    string   `xml:",chardata"`
}

// Dial 拨号动词，携带Queue子元素时接入指定队列
type Dial struct {
	XMLName xml.Name `xml:"Dial"`
	Queue   *Queue   `xml:",omitempty"`
	Number  string   `xml:"Number,omitempty"`
}

// Queue Dial的队列目标
type Queue struct {
	XMLName xml.Name `xml:"Queue"`
	Name    string   `xml:",chardata"`
}

// Hangup 挂断
type Hangup struct {
	XMLName xml.Name `xml:"Hangup"`
}

// New 创建一个空的TwiML响应
func New() *Response {
	return &Response{}
}

// Say 追加一条语音提示
func (r *Response) Say(text string) *Response {
	r.Verbs = append(r.Verbs, &Say{Text: text})
	return r
}

// Gather 追加一个输入收集动词并返回它以便嵌套提示
func (r *Response) Gather(g *Gather) *Gather {
	r.Verbs = append(r.Verbs, g)
	return g
}

// Say 在Gather内嵌套语音提示（收集输入的同时播放）
func (g *Gather) Say(text string) *Gather {
	g.Verbs = append(g.Verbs, &Say{Text: text})
	return g
}

// Redirect 追加一次POST重定向
func (r *Response) Redirect(url string) *Response {
	r.Verbs = append(r.Verbs, &Redirect{Method: "POST", URL: url})
	return r
}

// Enqueue 追加入队动词
func (r *Response) Enqueue(name, waitURL string) *Response {
	r.Verbs = append(r.Verbs, &Enqueue{Name: name, WaitURL: waitURL})
	return r
}

// DialQueue 追加一个接入命名队列的拨号动词
func (r *Response) DialQueue(name string) *Response {
	r.Verbs = append(r.Verbs, &Dial{Queue: &Queue{Name: name}})
	return r
}

// DialNumber 追加一个直接拨号动词
func (r *Response) DialNumber(number string) *Response {
	r.Verbs = append(r.Verbs, &Dial{Number: number})
	return r
}

// Hangup 追加挂断动词
func (r *Response) Hangup() *Response {
	r.Verbs = append(r.Verbs, &Hangup{})
	return r
}

// Render 序列化为带XML声明的文档
func (r *Response) Render() (string, error) {
	body, err := xml.Marshal(r)
	if err != nil {
		return "", err
	}
	return xml.Header + string(body), nil
}
