package linkflow

import (
	"errors"
	"fmt"
)

// State names one screen of the add-asset wizard.
type State string

const (
	StateChooseAssetType      State = "choose_asset_type"
	StateChooseLinkMethod     State = "choose_link_method"
	StateChooseBrokerCategory State = "choose_broker_category"
	StateChooseBroker         State = "choose_broker"
	StateCompleted            State = "completed"
)

// Link methods offered once an investment asset type is chosen.
const (
	MethodManual = "manual"
	MethodLink   = "link"
)

var (
	ErrInvalidTransition = errors.New("event is not valid in the current state")
	ErrUnknownOption     = errors.New("option is not offered in the current state")
)

// Selection is the accumulated outcome of a finished (or in-flight) flow.
type Selection struct {
	AssetType      string `json:"assetType,omitempty"`
	LinkMethod     string `json:"linkMethod,omitempty"`
	BrokerCategory string `json:"brokerCategory,omitempty"`
	BrokerID       string `json:"brokerId,omitempty"`
}

// Flow walks the user from "what kind of asset?" to either a manual entry or
// a concrete broker choice. Every transition is explicit; an event fired in
// the wrong state is ErrInvalidTransition, an option the current state does
// not offer is ErrUnknownOption.
type Flow struct {
	state     State
	selection Selection
}

func New() *Flow {
	return &Flow{state: StateChooseAssetType}
}

func (f *Flow) State() State { return f.state }

func (f *Flow) Selection() Selection { return f.selection }

// SelectAssetType picks the asset type. Non-linkable types finish the flow
// immediately (the asset will be entered by hand); investment types continue
// to the link-method choice.
func (f *Flow) SelectAssetType(slug string) error {
	if f.state != StateChooseAssetType {
		return fmt.Errorf("%w: select_asset_type in %s", ErrInvalidTransition, f.state)
	}

	t, ok := assetTypeBySlug(slug)
	if !ok {
		return fmt.Errorf("%w: asset type %q", ErrUnknownOption, slug)
	}

	f.selection.AssetType = t.Slug
	if t.Linkable {
		f.state = StateChooseLinkMethod
	} else {
		f.state = StateCompleted
	}
	return nil
}

// SelectLinkMethod picks manual entry or a broker link.
func (f *Flow) SelectLinkMethod(method string) error {
	if f.state != StateChooseLinkMethod {
		return fmt.Errorf("%w: select_link_method in %s", ErrInvalidTransition, f.state)
	}

	switch method {
	case MethodManual:
		f.selection.LinkMethod = MethodManual
		f.state = StateCompleted
	case MethodLink:
		f.selection.LinkMethod = MethodLink
		f.state = StateChooseBrokerCategory
	default:
		return fmt.Errorf("%w: link method %q", ErrUnknownOption, method)
	}
	return nil
}

// SelectCategory picks a broker category.
func (f *Flow) SelectCategory(slug string) error {
	if f.state != StateChooseBrokerCategory {
		return fmt.Errorf("%w: select_category in %s", ErrInvalidTransition, f.state)
	}

	if _, ok := brokerCategoryBySlug(slug); !ok {
		return fmt.Errorf("%w: broker category %q", ErrUnknownOption, slug)
	}

	f.selection.BrokerCategory = slug
	f.state = StateChooseBroker
	return nil
}

// SelectBroker picks a broker from the chosen category and finishes the flow.
func (f *Flow) SelectBroker(id string) error {
	if f.state != StateChooseBroker {
		return fmt.Errorf("%w: select_broker in %s", ErrInvalidTransition, f.state)
	}

	category, _ := brokerCategoryBySlug(f.selection.BrokerCategory)
	if !category.hasBroker(id) {
		return fmt.Errorf("%w: broker %q in category %q", ErrUnknownOption, id, f.selection.BrokerCategory)
	}

	f.selection.BrokerID = id
	f.state = StateCompleted
	return nil
}

// Back steps one screen back, clearing the choice that screen made.
func (f *Flow) Back() error {
	switch f.state {
	case StateChooseLinkMethod:
		f.selection.AssetType = ""
		f.state = StateChooseAssetType
	case StateChooseBrokerCategory:
		f.selection.LinkMethod = ""
		f.state = StateChooseLinkMethod
	case StateChooseBroker:
		f.selection.BrokerCategory = ""
		f.state = StateChooseBrokerCategory
	default:
		return fmt.Errorf("%w: back in %s", ErrInvalidTransition, f.state)
	}
	return nil
}

// Option is one choice the current screen offers.
type Option struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Options lists the choices valid in the current state. A completed flow has
// none.
func (f *Flow) Options() []Option {
	switch f.state {
	case StateChooseAssetType:
		opts := make([]Option, 0, len(assetTypes))
		for _, t := range assetTypes {
			opts = append(opts, Option{ID: t.Slug, Name: t.Name})
		}
		return opts
	case StateChooseLinkMethod:
		return []Option{
			{ID: MethodManual, Name: "Enter manually"},
			{ID: MethodLink, Name: "Link a brokerage account"},
		}
	case StateChooseBrokerCategory:
		opts := make([]Option, 0, len(brokerCategories))
		for _, c := range brokerCategories {
			opts = append(opts, Option{ID: c.Slug, Name: c.Name})
		}
		return opts
	case StateChooseBroker:
		category, ok := brokerCategoryBySlug(f.selection.BrokerCategory)
		if !ok {
			return nil
		}
		opts := make([]Option, 0, len(category.Brokers))
		for _, b := range category.Brokers {
			opts = append(opts, Option{ID: b.ID, Name: b.Name})
		}
		return opts
	}
	return nil
}
